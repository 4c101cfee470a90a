package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/services"
)

// ReturnHandler receives the gateway's redirect callback after the payer
// leaves the hosted payment page.
type ReturnHandler struct {
	db        *gorm.DB
	reconcile *services.ReconcileService
	settings  *services.SettingsService
	email     *services.EmailService
}

func NewReturnHandler(db *gorm.DB, reconcile *services.ReconcileService, settings *services.SettingsService, email *services.EmailService) *ReturnHandler {
	return &ReturnHandler{
		db:        db,
		reconcile: reconcile,
		settings:  settings,
		email:     email,
	}
}

// HandleReturn validates and reconciles one return callback, then sends
// the payer to wherever the reconciler decided.
func (h *ReturnHandler) HandleReturn(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid callback form")
	}

	fields := services.SanitizeCallback(form)
	h.recordCallback(c, fields)

	ctx := c.Request().Context()
	cfg, err := h.settings.GatewayConfig(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}

	result := h.reconcile.HandleReturn(ctx, cfg, fields)

	if result.Outcome == services.OutcomePaid && result.Order != nil {
		h.sendReceipt(result.Order, fields.TrackID)
	}

	return c.Redirect(http.StatusFound, result.RedirectURL)
}

// recordCallback stores the raw payload before any validation so disputes
// can be traced back to what the gateway actually sent.
func (h *ReturnHandler) recordCallback(c echo.Context, fields services.RawCallbackFields) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	history := models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayIDPay,
		OrderUUID:      fields.OrderID,
		Metadata:       payload,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("Failed to store callback history for order %s: %v", fields.OrderID, err)
	}
}

// sendReceipt emails a best-effort payment confirmation. Failures are
// logged only; the payment itself has already settled.
func (h *ReturnHandler) sendReceipt(order *models.Order, trackID string) {
	if h.email == nil || order.CustomerEmail == "" {
		return
	}

	subject := "Payment received for order " + order.UUID
	body := "Your payment has been received.\nOrder: " + order.UUID
	if trackID != "" {
		body += "\nTrack id: " + trackID
	}

	if err := h.email.SendEmail([]string{order.CustomerEmail}, subject, body); err != nil {
		log.Printf("Failed to send receipt for order %s: %v", order.UUID, err)
	}
}
