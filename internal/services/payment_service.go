package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/store"
)

var (
	// ErrGatewayUnreachable means the creation call transport-failed even
	// after the client's retry budget.
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	// ErrGatewayRejected means the gateway answered but not with the
	// expected 201 + transaction id + redirect link.
	ErrGatewayRejected = errors.New("payment gateway rejected the transaction")
)

// createdStatusSentinel is the initial remote status recorded when a
// transaction has been created but the payer has not been through the
// gateway yet.
const createdStatusSentinel = "1"

// PaymentService builds remote gateway transactions for orders and hands
// back the hosted payment page link.
type PaymentService struct {
	store      store.OrderStore
	gw         *gateway.IDPay
	currencies *gateway.CurrencyRegistry
	notices    Noticer
	appURL     string
}

func NewPaymentService(orderStore store.OrderStore, gw *gateway.IDPay, currencies *gateway.CurrencyRegistry, notices Noticer, appURL string) *PaymentService {
	return &PaymentService{
		store:      orderStore,
		gw:         gw,
		currencies: currencies,
		notices:    notices,
		appURL:     appURL,
	}
}

// CallbackURL is where the gateway sends the payer back after the hosted
// payment page. The order reference rides along as a query parameter.
func (s *PaymentService) CallbackURL(order *models.Order) string {
	return s.appURL + "/gateway/idpay/return?wc_order=" + url.QueryEscape(order.UUID)
}

// InitiatePayment creates the remote transaction for an order and returns
// the redirect link to the hosted payment page.
//
// The remote transaction id and the created-status sentinel are persisted
// as order metadata before the link is returned, so the return handler can
// reconcile against them later.
func (s *PaymentService) InitiatePayment(ctx context.Context, order *models.Order, cfg gateway.Config) (string, error) {
	amount, err := s.currencies.Normalize(order.Total, order.Currency)
	if err != nil {
		s.notices.Show(ctx, order.UUID, Notice{
			Text:     "Selected currency is not supported",
			Severity: NoticeError,
		})
		return "", err
	}

	req := gateway.CreateRequest{
		OrderID:  order.UUID,
		Amount:   amount,
		Name:     order.CustomerName,
		Phone:    order.CustomerPhone,
		Mail:     order.CustomerEmail,
		Desc:     "Order number #" + order.UUID,
		Callback: s.CallbackURL(order),
		Reseller: cfg.Reseller,
	}

	result, err := s.gw.CreateTransaction(ctx, cfg, req)
	if err != nil {
		if noteErr := s.store.AddNote(ctx, order.ID, err.Error()); noteErr != nil {
			log.Printf("Failed to record gateway error on order %s: %v", order.UUID, noteErr)
		}
		return "", fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	if result.HTTPStatus != http.StatusCreated || result.ID == "" || result.Link == "" {
		note := "An error occurred while creating the transaction.\n"
		note += fmt.Sprintf("error status: %d", result.HTTPStatus)
		if !result.ErrorCode.Empty() && result.ErrorMessage != "" {
			note += fmt.Sprintf("\nerror code: %s", result.ErrorCode)
			note += fmt.Sprintf("\nerror message: %s", result.ErrorMessage)
			s.notices.Show(ctx, order.UUID, Notice{Text: result.ErrorMessage, Severity: NoticeError})
		}
		if noteErr := s.store.AddNote(ctx, order.ID, note); noteErr != nil {
			log.Printf("Failed to record gateway rejection on order %s: %v", order.UUID, noteErr)
		}
		return "", ErrGatewayRejected
	}

	if err := s.store.SetMeta(ctx, order.ID, store.MetaTransactionID, result.ID); err != nil {
		return "", err
	}
	if err := s.store.SetMeta(ctx, order.ID, store.MetaTransactionStatus, createdStatusSentinel); err != nil {
		return "", err
	}
	if err := s.store.AddNote(ctx, order.ID, fmt.Sprintf("transaction id: %s", result.ID)); err != nil {
		log.Printf("Failed to record transaction note on order %s: %v", order.UUID, err)
	}

	return result.Link, nil
}
