package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayIDPay  PaymentGateway = "idpay"
	PaymentGatewayManual PaymentGateway = "manual"
)

// PaymentCallbackHistory stores every inbound return callback as received,
// before any validation, so disputes can be traced back to raw payloads.
type PaymentCallbackHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	OrderUUID      string          `gorm:"type:varchar(64);index" json:"order_uuid"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
