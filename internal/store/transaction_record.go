package store

import (
	"context"
	"strconv"
)

// Metadata keys for the gateway transaction attached to an order. The
// key names are part of the external contract with reporting tools, so
// they stay string-keyed even though the code works with the typed record.
const (
	MetaTransactionID      = "idpay_transaction_id"
	MetaTransactionStatus  = "idpay_transaction_status"
	MetaTrackID            = "idpay_track_id"
	MetaTransactionOrderID = "idpay_transaction_order_id"
	MetaTransactionAmount  = "idpay_transaction_amount"
	MetaPaymentCardNo      = "idpay_payment_card_no"
	MetaPaymentHashedCard  = "idpay_payment_hashed_card_no"
	MetaPaymentDate        = "idpay_payment_date"
	MetaPaidTransactionID  = "paid_transaction_id"
)

// TransactionRecord is the typed view over the per-order gateway metadata.
// Fields are written at two points: optimistically from redirect
// parameters, authoritatively from the verification response. Writes are
// last-write-wins per field; records are never deleted.
type TransactionRecord struct {
	TransactionID string
	RemoteStatus  string
	TrackID       string
	OrderRef      string
	Amount        string
	CardNo        string
	HashedCardNo  string
	PaymentDate   string
}

// RemoteStatusCode parses the stored remote status, returning 0 when the
// record has never been through the gateway.
func (r TransactionRecord) RemoteStatusCode() int64 {
	n, err := strconv.ParseInt(r.RemoteStatus, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// LoadTransactionRecord reads the record for an order from the metadata bag.
func LoadTransactionRecord(ctx context.Context, s OrderStore, orderID uint) (*TransactionRecord, error) {
	rec := &TransactionRecord{}
	fields := []struct {
		key string
		dst *string
	}{
		{MetaTransactionID, &rec.TransactionID},
		{MetaTransactionStatus, &rec.RemoteStatus},
		{MetaTrackID, &rec.TrackID},
		{MetaTransactionOrderID, &rec.OrderRef},
		{MetaTransactionAmount, &rec.Amount},
		{MetaPaymentCardNo, &rec.CardNo},
		{MetaPaymentHashedCard, &rec.HashedCardNo},
		{MetaPaymentDate, &rec.PaymentDate},
	}
	for _, f := range fields {
		v, err := s.GetMeta(ctx, orderID, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return rec, nil
}

// Save writes every field of the record into the metadata bag.
func (r TransactionRecord) Save(ctx context.Context, s OrderStore, orderID uint) error {
	fields := map[string]string{
		MetaTransactionID:      r.TransactionID,
		MetaTransactionStatus:  r.RemoteStatus,
		MetaTrackID:            r.TrackID,
		MetaTransactionOrderID: r.OrderRef,
		MetaTransactionAmount:  r.Amount,
		MetaPaymentCardNo:      r.CardNo,
		MetaPaymentHashedCard:  r.HashedCardNo,
		MetaPaymentDate:        r.PaymentDate,
	}
	for key, value := range fields {
		if err := s.SetMeta(ctx, orderID, key, value); err != nil {
			return err
		}
	}
	return nil
}
