package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/models"
)

const (
	settingsCacheKey = "gateway:settings"
	settingsCacheTTL = 5 * time.Minute
)

// SettingsService loads and saves the admin-settable gateway configuration.
// Reads go through the redis cache; the database row is seeded with the
// gateway defaults on first access.
type SettingsService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewSettingsService(db *gorm.DB, cache *RedisCache) *SettingsService {
	return &SettingsService{db: db, cache: cache}
}

// DefaultGatewaySetting returns the stock configuration used before an
// admin has saved anything.
func DefaultGatewaySetting() models.GatewaySetting {
	return models.GatewaySetting{
		Enabled:        true,
		Title:          "IDPay payment gateway",
		Description:    "Redirects customers to IDPay to process their payments.",
		Endpoint:       "https://api.idpay.ir/v1.1",
		SuccessMessage: "Your payment has been successfully completed. Track id: {track_id}",
		FailedMessage:  "Your payment has failed. Please try again or contact the site administrator in case of a problem.",
	}
}

// Get returns the current gateway settings, creating the default row if
// none exists yet.
func (s *SettingsService) Get(ctx context.Context) (models.GatewaySetting, error) {
	return GetOrSet(s.cache, ctx, settingsCacheKey, settingsCacheTTL, func() (models.GatewaySetting, error) {
		var setting models.GatewaySetting
		err := s.db.WithContext(ctx).First(&setting).Error
		if err == nil {
			return setting, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return setting, err
		}

		setting = DefaultGatewaySetting()
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return setting, err
		}
		return setting, nil
	})
}

// Save persists updated settings and invalidates the cache.
func (s *SettingsService) Save(ctx context.Context, setting *models.GatewaySetting) error {
	if err := s.db.WithContext(ctx).Save(setting).Error; err != nil {
		return err
	}
	return s.cache.Delete(ctx, settingsCacheKey)
}

// GatewayConfig resolves the immutable per-request gateway configuration.
func (s *SettingsService) GatewayConfig(ctx context.Context) (gateway.Config, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return gateway.Config{}, err
	}
	return gateway.Config{
		Endpoint:       setting.Endpoint,
		APIKey:         setting.APIKey,
		Sandbox:        setting.Sandbox,
		Reseller:       setting.Reseller,
		SuccessMessage: setting.SuccessMessage,
		FailedMessage:  setting.FailedMessage,
	}, nil
}
