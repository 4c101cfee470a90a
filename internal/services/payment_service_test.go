package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/store"
)

// fakeNoticer records notices in memory, keyed by order UUID.
type fakeNoticer struct {
	mu      sync.Mutex
	notices map[string][]Notice
}

func newFakeNoticer() *fakeNoticer {
	return &fakeNoticer{notices: make(map[string][]Notice)}
}

func (f *fakeNoticer) Show(ctx context.Context, orderUUID string, notice Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices[orderUUID] = append(f.notices[orderUUID], notice)
}

func (f *fakeNoticer) For(orderUUID string) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notice(nil), f.notices[orderUUID]...)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func testOrder() *models.Order {
	return &models.Order{
		ID:            1,
		UUID:          "order-1",
		Status:        models.OrderStatusPending,
		Total:         15,
		Currency:      "IRHT",
		CustomerName:  "Jane Doe",
		CustomerPhone: "09120000000",
		CustomerEmail: "jane@example.test",
	}
}

func TestInitiatePayment(t *testing.T) {
	var gotCallback string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gateway.CreateRequest
		assert.NoError(t, decodeJSON(r, &req))
		gotCallback = req.Callback
		assert.Equal(t, int64(150000), req.Amount)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "abc123", "link": "https://idpay.ir/p/abc123"}`))
	}))
	defer srv.Close()

	orders := store.NewMemoryOrderStore()
	order := testOrder()
	orders.Put(order)
	notices := newFakeNoticer()

	svc := NewPaymentService(orders, gateway.NewIDPay(gateway.NewClient()), gateway.NewCurrencyRegistry(), notices, "https://shop.test")
	cfg := gateway.Config{Endpoint: srv.URL, APIKey: "key"}

	link, err := svc.InitiatePayment(context.Background(), order, cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://idpay.ir/p/abc123", link)
	assert.Equal(t, "https://shop.test/gateway/idpay/return?wc_order=order-1", gotCallback)

	meta := orders.Metadata(order.ID)
	assert.Equal(t, "abc123", meta[store.MetaTransactionID])
	assert.Equal(t, "1", meta[store.MetaTransactionStatus])
	require.Len(t, orders.Notes(order.ID), 1)
	assert.Contains(t, orders.Notes(order.ID)[0], "abc123")
}

func TestInitiatePaymentGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"error_code": 34, "error_message": "Amount is below the minimum"}`))
	}))
	defer srv.Close()

	orders := store.NewMemoryOrderStore()
	order := testOrder()
	orders.Put(order)
	notices := newFakeNoticer()

	svc := NewPaymentService(orders, gateway.NewIDPay(gateway.NewClient()), gateway.NewCurrencyRegistry(), notices, "https://shop.test")
	cfg := gateway.Config{Endpoint: srv.URL, APIKey: "key"}

	_, err := svc.InitiatePayment(context.Background(), order, cfg)
	require.ErrorIs(t, err, ErrGatewayRejected)

	// No transaction metadata may be recorded for a rejected creation.
	assert.Empty(t, orders.Metadata(order.ID)[store.MetaTransactionID])

	notes := orders.Notes(order.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "error status: 406")
	assert.Contains(t, notes[0], "error code: 34")

	shown := notices.For(order.UUID)
	require.Len(t, shown, 1)
	assert.Equal(t, "Amount is below the minimum", shown[0].Text)
	assert.Equal(t, NoticeError, shown[0].Severity)
}

func TestInitiatePaymentUnsupportedCurrency(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	orders := store.NewMemoryOrderStore()
	order := testOrder()
	order.Currency = "USD"
	orders.Put(order)
	notices := newFakeNoticer()

	svc := NewPaymentService(orders, gateway.NewIDPay(gateway.NewClient()), gateway.NewCurrencyRegistry(), notices, "https://shop.test")
	cfg := gateway.Config{Endpoint: srv.URL, APIKey: "key"}

	_, err := svc.InitiatePayment(context.Background(), order, cfg)
	require.ErrorIs(t, err, gateway.ErrCurrencyUnsupported)
	assert.Zero(t, calls, "gateway must not be contacted for unsupported currency")
	require.Len(t, notices.For(order.UUID), 1)
}

func TestInitiatePaymentGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	orders := store.NewMemoryOrderStore()
	order := testOrder()
	orders.Put(order)

	svc := NewPaymentService(orders, gateway.NewIDPay(gateway.NewClient()), gateway.NewCurrencyRegistry(), newFakeNoticer(), "https://shop.test")
	cfg := gateway.Config{Endpoint: srv.URL, APIKey: "key"}

	_, err := svc.InitiatePayment(context.Background(), order, cfg)
	require.ErrorIs(t, err, ErrGatewayUnreachable)
	require.Len(t, orders.Notes(order.ID), 1)
}
