package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/services"
)

// AdminHandler exposes the gateway settings over the firebase-protected
// admin API.
type AdminHandler struct {
	settings *services.SettingsService
}

func NewAdminHandler(settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{settings: settings}
}

// GetSettings returns the current gateway configuration.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	setting, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}
	return c.JSON(http.StatusOK, setting)
}

// UpdateSettings replaces the admin-settable fields of the configuration.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()

	current, err := h.settings.Get(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load gateway settings")
	}

	var req models.GatewaySetting
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid settings payload")
	}

	current.Enabled = req.Enabled
	current.Title = req.Title
	current.Description = req.Description
	current.Endpoint = req.Endpoint
	current.APIKey = req.APIKey
	current.Sandbox = req.Sandbox
	current.Reseller = req.Reseller
	current.SuccessMessage = req.SuccessMessage
	current.FailedMessage = req.FailedMessage

	if err := h.settings.Save(ctx, &current); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save gateway settings")
	}

	return c.JSON(http.StatusOK, current)
}
