package models

import (
	"time"

	"gorm.io/gorm"
)

// GatewaySetting holds the admin-settable configuration of the remote
// payment gateway. A single row is kept; defaults are seeded on first run.
type GatewaySetting struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Enabled     bool   `gorm:"default:true" json:"enabled"`
	Title       string `gorm:"type:varchar(255)" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Endpoint string `gorm:"type:varchar(255)" json:"endpoint"`
	APIKey   string `gorm:"type:varchar(255)" json:"api_key"`
	Sandbox  bool   `gorm:"default:false" json:"sandbox"`
	Reseller string `gorm:"type:varchar(100)" json:"reseller"`

	// Message templates support the {track_id} and {order_id} placeholders.
	SuccessMessage string `gorm:"type:text" json:"success_message"`
	FailedMessage  string `gorm:"type:text" json:"failed_message"`
}
