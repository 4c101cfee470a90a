package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/store"
)

const (
	// statusSubmitted is the only redirect status worth verifying; anything
	// else already failed on the gateway side.
	statusSubmitted = "10"

	// settledStatusThreshold is the gateway's status-code boundary for a
	// settled transaction. Opaque constant from the remote status space.
	settledStatusThreshold int64 = 100

	reconcileLockTTL = 30 * time.Second
)

// ReconcileOutcome is the terminal state of a return callback.
type ReconcileOutcome string

const (
	// OutcomeRejected: malformed or mismatched callback; the order was not
	// touched.
	OutcomeRejected ReconcileOutcome = "rejected"
	// OutcomeAlreadySettled: duplicate callback for an order that is
	// already paid; no verify call was made.
	OutcomeAlreadySettled ReconcileOutcome = "already_settled"
	OutcomeFailed         ReconcileOutcome = "failed"
	OutcomePaid           ReconcileOutcome = "paid"
)

// RawCallbackFields carries the untrusted form fields of a return
// callback. Nothing here is believed until the server-side verify call
// agrees with it.
type RawCallbackFields struct {
	Status       string
	TrackID      string
	ID           string
	OrderID      string
	Amount       string
	CardNo       string
	Date         string
	HashedCardNo string
}

// SanitizeCallback extracts and sanitizes the callback fields from a form
// post.
func SanitizeCallback(form url.Values) RawCallbackFields {
	return RawCallbackFields{
		Status:       sanitizeField(form.Get("status")),
		TrackID:      sanitizeField(form.Get("track_id")),
		ID:           sanitizeField(form.Get("id")),
		OrderID:      sanitizeField(form.Get("order_id")),
		Amount:       sanitizeField(form.Get("amount")),
		CardNo:       sanitizeField(form.Get("card_no")),
		Date:         sanitizeField(form.Get("date")),
		HashedCardNo: sanitizeField(form.Get("hashed_card_no")),
	}
}

func sanitizeField(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// ReturnResult is the committed outcome of a return callback: where to
// send the payer and what happened.
type ReturnResult struct {
	Outcome     ReconcileOutcome
	RedirectURL string
	Order       *models.Order
}

// ReconcileService drives the return-callback state machine: validate the
// redirect, check for double-spending, short-circuit already-settled
// orders, verify server-side, and commit the final order state. The
// redirect data alone only decides whether verification is worth doing;
// finality always comes from the verify call.
type ReconcileService struct {
	store      store.OrderStore
	gw         *gateway.IDPay
	currencies *gateway.CurrencyRegistry
	notices    Noticer
	locker     OrderLocker
	appURL     string
}

func NewReconcileService(orderStore store.OrderStore, gw *gateway.IDPay, currencies *gateway.CurrencyRegistry, notices Noticer, locker OrderLocker, appURL string) *ReconcileService {
	return &ReconcileService{
		store:      orderStore,
		gw:         gw,
		currencies: currencies,
		notices:    notices,
		locker:     locker,
		appURL:     appURL,
	}
}

func (s *ReconcileService) checkoutURL() string {
	return s.appURL + "/checkout"
}

func (s *ReconcileService) successReturnURL(order *models.Order) string {
	return s.appURL + "/orders/" + url.PathEscape(order.UUID) + "/received?wc_status=success"
}

// HandleReturn processes one return callback end to end. Every path
// resolves to a redirect target plus a user notice; the order is never
// left in an ambiguous state without an audit note explaining why.
func (s *ReconcileService) HandleReturn(ctx context.Context, cfg gateway.Config, fields RawCallbackFields) ReturnResult {
	// Step 1: validate the callback and resolve the order.
	if fields.ID == "" || fields.OrderID == "" {
		return s.reject(ctx, fields.OrderID)
	}

	order, err := s.store.GetOrder(ctx, fields.OrderID)
	if err != nil {
		if err != store.ErrOrderNotFound {
			log.Printf("Failed to load order %s for return callback: %v", fields.OrderID, err)
		}
		return s.reject(ctx, fields.OrderID)
	}

	// Step 2: double-spend check. A callback presenting a transaction id
	// other than the one recorded at creation time is a replay or
	// tampering attempt.
	recordedID, err := s.store.GetMeta(ctx, order.ID, store.MetaTransactionID)
	if err != nil {
		log.Printf("Failed to load transaction id for order %s: %v", order.UUID, err)
		return s.reject(ctx, fields.OrderID)
	}
	if recordedID != fields.ID {
		log.Printf("Double-spending blocked for order %s: callback id %q != recorded id %q", order.UUID, fields.ID, recordedID)
		return s.reject(ctx, fields.OrderID)
	}

	// Steps 3-9 run under a per-order lock; a concurrent duplicate is
	// turned away without writes and will settle via the short-circuit on
	// its next attempt.
	lockKey := "reconcile:order:" + order.UUID
	locked, err := s.locker.TryLock(ctx, lockKey, reconcileLockTTL)
	if err != nil {
		log.Printf("Failed to acquire reconcile lock for order %s: %v", order.UUID, err)
		return s.reject(ctx, fields.OrderID)
	}
	if !locked {
		log.Printf("Reconcile already in flight for order %s", order.UUID)
		return s.reject(ctx, fields.OrderID)
	}
	defer func() {
		if err := s.locker.Unlock(ctx, lockKey); err != nil {
			log.Printf("Failed to release reconcile lock for order %s: %v", order.UUID, err)
		}
	}()

	return s.reconcile(ctx, cfg, order, fields, recordedID)
}

func (s *ReconcileService) reconcile(ctx context.Context, cfg gateway.Config, order *models.Order, fields RawCallbackFields, recordedID string) ReturnResult {
	// Step 3: short-circuit already-settled orders so duplicate callbacks
	// are idempotent.
	record, err := store.LoadTransactionRecord(ctx, s.store, order.ID)
	if err != nil {
		log.Printf("Failed to load transaction record for order %s: %v", order.UUID, err)
		return s.reject(ctx, order.UUID)
	}
	if order.Status == models.OrderStatusCompleted || order.Status == models.OrderStatusProcessing ||
		record.RemoteStatusCode() >= settledStatusThreshold {
		s.showSuccess(ctx, cfg, order, record.TrackID)
		return ReturnResult{Outcome: OutcomeAlreadySettled, RedirectURL: s.successReturnURL(order), Order: order}
	}

	// Step 4: persist the optimistic snapshot of the redirect data. Audit
	// trail only; nothing here is authoritative yet.
	snapshot := store.TransactionRecord{
		TransactionID: fields.ID,
		RemoteStatus:  fields.Status,
		TrackID:       fields.TrackID,
		OrderRef:      fields.OrderID,
		Amount:        fields.Amount,
		CardNo:        fields.CardNo,
		HashedCardNo:  fields.HashedCardNo,
		PaymentDate:   fields.Date,
	}
	if err := snapshot.Save(ctx, s.store, order.ID); err != nil {
		log.Printf("Failed to persist callback snapshot for order %s: %v", order.UUID, err)
	}

	// Step 5: a non-submitted redirect status already failed on the
	// gateway side. It is never trusted enough to verify, and never enough
	// alone to succeed.
	if fields.Status != statusSubmitted {
		s.failOrder(ctx, cfg, order, fields.TrackID)
		return ReturnResult{Outcome: OutcomeFailed, RedirectURL: s.checkoutURL(), Order: order}
	}

	// Step 6: the authoritative server-side verification.
	verify, err := s.gw.VerifyTransaction(ctx, cfg, recordedID, fields.OrderID)
	if err != nil {
		// Transport failure: leave the order status untouched and send the
		// payer back to checkout. The note keeps the trail.
		if noteErr := s.store.AddNote(ctx, order.ID, err.Error()); noteErr != nil {
			log.Printf("Failed to record verify error on order %s: %v", order.UUID, noteErr)
		}
		s.showFailed(ctx, cfg, order, fields.TrackID)
		return ReturnResult{Outcome: OutcomeFailed, RedirectURL: s.checkoutURL(), Order: order}
	}

	// Step 7: interpret the verify response.
	if verify.HTTPStatus != http.StatusOK {
		note := "An error occurred while verifying the transaction.\n"
		note += fmt.Sprintf("error status: %d", verify.HTTPStatus)
		if !verify.ErrorCode.Empty() && verify.ErrorMessage != "" {
			note += fmt.Sprintf("\nerror code: %s", verify.ErrorCode)
			note += fmt.Sprintf("\nerror message: %s", verify.ErrorMessage)
			s.notices.Show(ctx, order.UUID, Notice{Text: verify.ErrorMessage, Severity: NoticeError})
		}
		if noteErr := s.store.AddNote(ctx, order.ID, note); noteErr != nil {
			log.Printf("Failed to record verify rejection on order %s: %v", order.UUID, noteErr)
		}
		if err := s.store.SetStatus(ctx, order.ID, models.OrderStatusFailed); err != nil {
			log.Printf("Failed to mark order %s failed: %v", order.UUID, err)
		}
		return ReturnResult{Outcome: OutcomeFailed, RedirectURL: s.checkoutURL(), Order: order}
	}

	desired := models.OrderStatusFailed
	if verify.Status.Int64() >= settledStatusThreshold {
		desired = models.OrderStatusProcessing
	}

	note := fmt.Sprintf("Transaction payment status: %s", verify.Status)
	note += fmt.Sprintf("\nIDPay tracking id: %s", verify.TrackID)
	note += fmt.Sprintf("\nPayer card number: %s", verify.Payment.CardNo)
	if err := s.store.AddNote(ctx, order.ID, note); err != nil {
		log.Printf("Failed to record verify note on order %s: %v", order.UUID, err)
	}

	// Authoritative overwrite: this is the only write trusted for final
	// reconciliation.
	verified := store.TransactionRecord{
		TransactionID: verify.ID.String(),
		RemoteStatus:  verify.Status.String(),
		TrackID:       verify.TrackID.String(),
		OrderRef:      verify.OrderID.String(),
		Amount:        verify.Amount.String(),
		CardNo:        verify.Payment.CardNo.String(),
		HashedCardNo:  verify.Payment.HashedCardNo.String(),
		PaymentDate:   verify.Payment.Date.String(),
	}
	if err := verified.Save(ctx, s.store, order.ID); err != nil {
		log.Printf("Failed to persist verified record for order %s: %v", order.UUID, err)
	}

	// Step 8: consistency gate. The verify response must be internally
	// complete and its amount must equal the re-normalized order total.
	expected, err := s.currencies.Normalize(order.Total, order.Currency)
	if err != nil ||
		verify.Status.Empty() || verify.TrackID.Empty() || verify.Amount.Empty() ||
		verify.Amount.Int64() != expected {
		if noteErr := s.store.AddNote(ctx, order.ID, "Error in transaction status or inconsistency with payment gateway information"); noteErr != nil {
			log.Printf("Failed to record inconsistency note on order %s: %v", order.UUID, noteErr)
		}
		desired = models.OrderStatusFailed
	}

	// Step 9: commit.
	if desired == models.OrderStatusFailed {
		s.failOrder(ctx, cfg, order, verified.TrackID)
		return ReturnResult{Outcome: OutcomeFailed, RedirectURL: s.checkoutURL(), Order: order}
	}

	if err := s.store.MarkPaid(ctx, order.ID, verified.TransactionID); err != nil {
		log.Printf("Failed to mark order %s paid: %v", order.UUID, err)
		s.failOrder(ctx, cfg, order, verified.TrackID)
		return ReturnResult{Outcome: OutcomeFailed, RedirectURL: s.checkoutURL(), Order: order}
	}
	if err := s.store.EmptyCart(ctx, order.ID); err != nil {
		log.Printf("Failed to empty cart for order %s: %v", order.UUID, err)
	}
	s.showSuccess(ctx, cfg, order, verified.TrackID)

	return ReturnResult{Outcome: OutcomePaid, RedirectURL: s.successReturnURL(order), Order: order}
}

// reject handles malformed or mismatched callbacks: a generic notice, a
// redirect to checkout, and no order writes at all.
func (s *ReconcileService) reject(ctx context.Context, orderUUID string) ReturnResult {
	if orderUUID != "" {
		s.notices.Show(ctx, orderUUID, Notice{
			Text:     "There is no order number referenced.\nPlease try again or contact the site administrator in case of a problem.",
			Severity: NoticeError,
		})
	}
	return ReturnResult{Outcome: OutcomeRejected, RedirectURL: s.checkoutURL()}
}

func (s *ReconcileService) failOrder(ctx context.Context, cfg gateway.Config, order *models.Order, trackID string) {
	if err := s.store.SetStatus(ctx, order.ID, models.OrderStatusFailed); err != nil {
		log.Printf("Failed to mark order %s failed: %v", order.UUID, err)
	}
	s.showFailed(ctx, cfg, order, trackID)
}

func (s *ReconcileService) showSuccess(ctx context.Context, cfg gateway.Config, order *models.Order, trackID string) {
	s.notices.Show(ctx, order.UUID, Notice{
		Text:     RenderMessage(cfg.SuccessMessage, trackID, order.UUID),
		Severity: NoticeSuccess,
	})
}

func (s *ReconcileService) showFailed(ctx context.Context, cfg gateway.Config, order *models.Order, trackID string) {
	s.notices.Show(ctx, order.UUID, Notice{
		Text:     RenderMessage(cfg.FailedMessage, trackID, order.UUID),
		Severity: NoticeError,
	})
}
