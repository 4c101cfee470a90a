package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paygate_app_echo/internal/models"
)

// ErrOrderNotFound is returned when no order matches the given reference.
var ErrOrderNotFound = errors.New("order not found")

// OrderStore is the order collaborator surface the payment core depends
// on. The gorm implementation below is the production one; tests use the
// in-memory store.
type OrderStore interface {
	// GetOrder looks an order up by its public UUID.
	GetOrder(ctx context.Context, uuid string) (*models.Order, error)
	SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error
	AddNote(ctx context.Context, orderID uint, note string) error
	// GetMeta returns "" (not an error) for keys never written.
	GetMeta(ctx context.Context, orderID uint, key string) (string, error)
	SetMeta(ctx context.Context, orderID uint, key, value string) error
	// MarkPaid records the settled transaction id and moves the order to
	// processing. Calling it again for an already-paid order is a no-op.
	MarkPaid(ctx context.Context, orderID uint, remoteTransactionID string) error
	// EmptyCart clears the storefront cart session tied to the order.
	EmptyCart(ctx context.Context, orderID uint) error
}

// GormOrderStore persists orders in postgres and clears carts in redis.
type GormOrderStore struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewGormOrderStore(db *gorm.DB, cache *redis.Client) *GormOrderStore {
	return &GormOrderStore{db: db, cache: cache}
}

func (s *GormOrderStore) GetOrder(ctx context.Context, uuid string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormOrderStore) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	return s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (s *GormOrderStore) AddNote(ctx context.Context, orderID uint, note string) error {
	return s.db.WithContext(ctx).Create(&models.OrderNote{
		OrderID: orderID,
		Note:    note,
	}).Error
}

func (s *GormOrderStore) GetMeta(ctx context.Context, orderID uint, key string) (string, error) {
	var meta models.OrderMeta
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND meta_key = ?", orderID, key).
		First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.MetaValue, nil
}

func (s *GormOrderStore) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
	}).Create(&models.OrderMeta{
		OrderID:   orderID,
		MetaKey:   key,
		MetaValue: value,
	}).Error
}

func (s *GormOrderStore) MarkPaid(ctx context.Context, orderID uint, remoteTransactionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}

		// Idempotent: a settled order stays settled.
		if order.Status == models.OrderStatusProcessing || order.Status == models.OrderStatusCompleted {
			return nil
		}

		updates := map[string]interface{}{"status": models.OrderStatusProcessing}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
		}).Create(&models.OrderMeta{
			OrderID:   orderID,
			MetaKey:   MetaPaidTransactionID,
			MetaValue: remoteTransactionID,
		}).Error
	})
}

func (s *GormOrderStore) EmptyCart(ctx context.Context, orderID uint) error {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return err
	}
	if order.CartToken == "" || s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, CartKey(order.CartToken)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", order.CartToken, err)
	}
	return nil
}

// CartKey builds the redis key holding a storefront cart session.
func CartKey(token string) string {
	return "cart:" + token
}
