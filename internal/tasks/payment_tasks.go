package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"paygate_app_echo/internal/models"
	"paygate_app_echo/internal/store"
)

// defaultPendingMaxAgeHours is how long a created-but-never-settled
// transaction may sit before its order is cancelled.
const defaultPendingMaxAgeHours = 24

// ExpirePendingPaymentsTaskDef cancels orders whose gateway transaction
// was created but never came back through the return flow. The remote
// status sentinel "1" marks exactly that state.
type ExpirePendingPaymentsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ExpirePendingPaymentsTaskDef) TaskID() string {
	return "expire_pending_payments"
}

// HandleExecution cancels stale pending orders and leaves an audit note on
// each.
func (t *ExpirePendingPaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	maxAgeHours := defaultPendingMaxAgeHours
	if v, ok := task.Arguments["max_age_hours"].(float64); ok && v > 0 {
		maxAgeHours = int(v)
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	var orders []models.Order
	err := db.WithContext(ctx).
		Joins("JOIN order_meta ON order_meta.order_id = orders.id").
		Where("orders.status = ?", models.OrderStatusPending).
		Where("order_meta.meta_key = ? AND order_meta.meta_value = ?", store.MetaTransactionStatus, "1").
		Where("orders.updated_at < ?", cutoff).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale pending orders: %w", err)
	}

	var expired []string
	for _, order := range orders {
		if err := db.WithContext(ctx).Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			log.Printf("Failed to cancel stale order %s: %v", order.UUID, err)
			continue
		}
		note := models.OrderNote{
			OrderID: order.ID,
			Note:    fmt.Sprintf("Order cancelled: no payment received within %d hours of transaction creation", maxAgeHours),
		}
		if err := db.WithContext(ctx).Create(&note).Error; err != nil {
			log.Printf("Failed to note cancellation on order %s: %v", order.UUID, err)
		}
		expired = append(expired, order.UUID)
	}

	return map[string]interface{}{
		"status":        "success",
		"expired_count": len(expired),
		"expired":       expired,
	}, nil
}

// ExpirePendingPaymentsTask is the singleton instance of
// ExpirePendingPaymentsTaskDef
var ExpirePendingPaymentsTask = &ExpirePendingPaymentsTaskDef{}
