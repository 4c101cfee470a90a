package store

import (
	"context"
	"testing"

	"paygate_app_echo/internal/models"
)

func TestTransactionRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	s.Put(&models.Order{ID: 1, UUID: "order-1"})

	rec := TransactionRecord{
		TransactionID: "abc123",
		RemoteStatus:  "10",
		TrackID:       "884426",
		OrderRef:      "order-1",
		Amount:        "150000",
		CardNo:        "6219-86**-****-8481",
		HashedCardNo:  "ab12",
		PaymentDate:   "1602133482",
	}
	if err := rec.Save(ctx, s, 1); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := LoadTransactionRecord(ctx, s, 1)
	if err != nil {
		t.Fatalf("LoadTransactionRecord returned error: %v", err)
	}
	if *loaded != rec {
		t.Errorf("round trip mismatch: got %+v; want %+v", *loaded, rec)
	}
}

func TestLoadTransactionRecordMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	s.Put(&models.Order{ID: 1, UUID: "order-1"})

	loaded, err := LoadTransactionRecord(ctx, s, 1)
	if err != nil {
		t.Fatalf("LoadTransactionRecord returned error: %v", err)
	}
	if *loaded != (TransactionRecord{}) {
		t.Errorf("expected zero record, got %+v", *loaded)
	}
	if loaded.RemoteStatusCode() != 0 {
		t.Errorf("RemoteStatusCode = %d; want 0", loaded.RemoteStatusCode())
	}
}

func TestRemoteStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected int64
	}{
		{name: "settled", status: "100", expected: 100},
		{name: "created", status: "1", expected: 1},
		{name: "empty", status: "", expected: 0},
		{name: "garbage", status: "n/a", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := TransactionRecord{RemoteStatus: tt.status}
			if got := rec.RemoteStatusCode(); got != tt.expected {
				t.Errorf("RemoteStatusCode(%q) = %d; want %d", tt.status, got, tt.expected)
			}
		})
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	s.Put(&models.Order{ID: 1, UUID: "order-1", Status: models.OrderStatusPending})

	if err := s.MarkPaid(ctx, 1, "abc123"); err != nil {
		t.Fatalf("MarkPaid returned error: %v", err)
	}
	order, _ := s.GetOrder(ctx, "order-1")
	if order.Status != models.OrderStatusProcessing {
		t.Fatalf("status = %s; want processing", order.Status)
	}

	// A second settlement attempt must not overwrite the paid marker.
	if err := s.MarkPaid(ctx, 1, "other-tx"); err != nil {
		t.Fatalf("second MarkPaid returned error: %v", err)
	}
	if got := s.Metadata(1)[MetaPaidTransactionID]; got != "abc123" {
		t.Errorf("paid transaction id = %q; want abc123", got)
	}
}
