package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateTransaction(t *testing.T) {
	var gotPath, gotAPIKey, gotSandbox string
	var gotBody CreateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-KEY")
		gotSandbox = r.Header.Get("X-SANDBOX")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "abc123", "link": "https://idpay.ir/p/abc123"}`))
	}))
	defer srv.Close()

	gw := NewIDPay(NewClient())
	cfg := Config{Endpoint: srv.URL, APIKey: "secret-key", Sandbox: true}

	result, err := gw.CreateTransaction(context.Background(), cfg, CreateRequest{
		OrderID:  "order-1",
		Amount:   150000,
		Callback: "https://shop.test/gateway/idpay/return?wc_order=order-1",
	})
	if err != nil {
		t.Fatalf("CreateTransaction returned error: %v", err)
	}

	if gotPath != "/payment" {
		t.Errorf("request path = %q; want /payment", gotPath)
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("X-API-KEY = %q; want secret-key", gotAPIKey)
	}
	if gotSandbox != "true" {
		t.Errorf("X-SANDBOX = %q; want true", gotSandbox)
	}
	if gotBody.OrderID != "order-1" || gotBody.Amount != 150000 {
		t.Errorf("request body = %+v; want order-1 / 150000", gotBody)
	}

	if result.HTTPStatus != http.StatusCreated {
		t.Errorf("HTTPStatus = %d; want 201", result.HTTPStatus)
	}
	if result.ID != "abc123" {
		t.Errorf("ID = %q; want abc123", result.ID)
	}
	if result.Link != "https://idpay.ir/p/abc123" {
		t.Errorf("Link = %q; want the payment page link", result.Link)
	}
}

func TestVerifyTransactionNumericFields(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		// The gateway mixes numbers and strings for the same fields.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"status": 100,
			"track_id": 884426,
			"id": "abc123",
			"order_id": "order-1",
			"amount": 150000,
			"payment": {"card_no": "6219-86**-****-8481", "hashed_card_no": "ab12", "date": 1602133482}
		}`))
	}))
	defer srv.Close()

	gw := NewIDPay(NewClient())
	cfg := Config{Endpoint: srv.URL, APIKey: "secret-key"}

	result, err := gw.VerifyTransaction(context.Background(), cfg, "abc123", "order-1")
	if err != nil {
		t.Fatalf("VerifyTransaction returned error: %v", err)
	}

	if gotPath != "/payment/verify" {
		t.Errorf("request path = %q; want /payment/verify", gotPath)
	}
	if gotBody["id"] != "abc123" || gotBody["order_id"] != "order-1" {
		t.Errorf("request body = %v; want id=abc123 order_id=order-1", gotBody)
	}

	if result.HTTPStatus != http.StatusOK {
		t.Errorf("HTTPStatus = %d; want 200", result.HTTPStatus)
	}
	if result.Status.Int64() != 100 {
		t.Errorf("Status = %q; want 100", result.Status)
	}
	if result.TrackID.String() != "884426" {
		t.Errorf("TrackID = %q; want 884426", result.TrackID)
	}
	if result.Amount.Int64() != 150000 {
		t.Errorf("Amount = %q; want 150000", result.Amount)
	}
	if result.Payment.CardNo.String() != "6219-86**-****-8481" {
		t.Errorf("CardNo = %q", result.Payment.CardNo)
	}
	if result.Payment.Date.String() != "1602133482" {
		t.Errorf("Date = %q; want 1602133482", result.Payment.Date)
	}
}

func TestVerifyTransactionMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	gw := NewIDPay(NewClient())
	cfg := Config{Endpoint: srv.URL}

	result, err := gw.VerifyTransaction(context.Background(), cfg, "abc123", "order-1")
	if err != nil {
		t.Fatalf("VerifyTransaction returned error: %v", err)
	}
	if result.HTTPStatus != http.StatusBadGateway {
		t.Errorf("HTTPStatus = %d; want 502", result.HTTPStatus)
	}
	if !result.Status.Empty() {
		t.Errorf("Status = %q; want empty on malformed body", result.Status)
	}
}
