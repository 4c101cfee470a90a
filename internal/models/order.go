package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus mirrors the storefront order lifecycle
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order represents a checkout order awaiting (or past) payment
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID   string      `gorm:"type:varchar(64);uniqueIndex" json:"uuid"`
	Status OrderStatus `gorm:"type:varchar(50);default:'pending'" json:"status"`

	// Total is expressed in whole units of Currency; the gateway unit
	// conversion happens in the currency registry.
	Total    int64  `json:"total"`
	Currency string `gorm:"type:varchar(10)" json:"currency"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(50)" json:"customer_phone"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email"`
	Description   string `gorm:"type:text" json:"description"`

	// CartToken links the order back to the storefront cart session so it
	// can be emptied once the payment settles.
	CartToken string `gorm:"type:varchar(100)" json:"cart_token"`

	// Relationships
	Notes []OrderNote `gorm:"foreignKey:OrderID" json:"notes,omitempty"`
	Meta  []OrderMeta `gorm:"foreignKey:OrderID" json:"meta,omitempty"`
}

// OrderNote is a free-text audit trail entry attached to an order
type OrderNote struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID uint   `gorm:"index" json:"order_id"`
	Note    string `gorm:"type:text" json:"note"`
}

// OrderMeta is the string-keyed metadata bag attached to an order.
// Writes are last-write-wins per key.
type OrderMeta struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID  uint   `gorm:"index:idx_order_meta_key,unique,priority:1" json:"order_id"`
	MetaKey  string `gorm:"type:varchar(255);index:idx_order_meta_key,unique,priority:2" json:"meta_key"`
	MetaValue string `gorm:"type:text" json:"meta_value"`
}
