package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/services"
)

// CheckoutHandler owns the storefront-facing checkout flow: opening an
// order, sending the payer to the gateway and reporting order status.
type CheckoutHandler struct {
	db             *gorm.DB
	paymentService *services.PaymentService
	settings       *services.SettingsService
	notices        *services.RedisNoticer
}

func NewCheckoutHandler(db *gorm.DB, paymentService *services.PaymentService, settings *services.SettingsService, notices *services.RedisNoticer) *CheckoutHandler {
	return &CheckoutHandler{
		db:             db,
		paymentService: paymentService,
		settings:       settings,
		notices:        notices,
	}
}

// CreateOrder opens a pending order and returns the URL that starts the
// payment. Mirrors the storefront's "place order" step.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order payload")
	}
	if req.Total <= 0 || req.Currency == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Order total and currency are required")
	}

	setting, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}
	if !setting.Enabled {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Payment gateway is disabled")
	}

	order := models.Order{
		UUID:          uuid.New().String(),
		Status:        models.OrderStatusPending,
		Total:         req.Total,
		Currency:      req.Currency,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Description:   req.Description,
		CartToken:     req.CartToken,
	}
	if err := h.db.Create(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create order")
	}

	return c.JSON(http.StatusCreated, CreateOrderResponse{
		OrderUUID: order.UUID,
		PayURL:    "/orders/" + order.UUID + "/pay",
	})
}

// Pay creates the remote transaction and redirects the payer to the hosted
// payment page. Failures surface a notice and bounce back to checkout.
func (h *CheckoutHandler) Pay(c echo.Context) error {
	orderUUID := c.Param("uuid")
	if orderUUID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order UUID")
	}

	var order models.Order
	if err := h.db.Where("uuid = ?", orderUUID).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}

	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusFailed {
		return echo.NewHTTPError(http.StatusBadRequest, "Order is not payable in its current state")
	}

	ctx := c.Request().Context()
	cfg, err := h.settings.GatewayConfig(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}

	link, err := h.paymentService.InitiatePayment(ctx, &order, cfg)
	if err != nil {
		log.Printf("Payment initiation failed for order %s: %v", order.UUID, err)
		switch {
		case errors.Is(err, gateway.ErrCurrencyUnsupported):
			// Notice already queued by the payment service.
		case errors.Is(err, services.ErrGatewayUnreachable), errors.Is(err, services.ErrGatewayRejected):
			// Audit note already attached to the order.
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to initiate payment")
		}
		return c.Redirect(http.StatusFound, "/checkout")
	}

	return c.Redirect(http.StatusFound, link)
}

// OrderStatus reports the order state and drains pending notices, used by
// the storefront's order-received page.
func (h *CheckoutHandler) OrderStatus(c echo.Context) error {
	orderUUID := c.Param("uuid")
	if orderUUID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order UUID")
	}

	var order models.Order
	if err := h.db.Where("uuid = ?", orderUUID).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}

	views := []NoticeView{}
	for _, n := range h.notices.Consume(c.Request().Context(), order.UUID) {
		views = append(views, NoticeView{Text: n.Text, Severity: string(n.Severity)})
	}

	return c.JSON(http.StatusOK, OrderStatusResponse{
		OrderUUID: order.UUID,
		Status:    string(order.Status),
		Notices:   views,
	})
}

// GatewayInfo exposes the customer-facing gateway title/description for
// the checkout page.
func (h *CheckoutHandler) GatewayInfo(c echo.Context) error {
	setting, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"enabled":     setting.Enabled,
		"title":       setting.Title,
		"description": setting.Description,
	})
}
