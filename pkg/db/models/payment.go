package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/pkg/enums"
)

// Payment is one dispatched gateway transaction against a payment method.
// The row records whatever the gateway reported; this layer never rewrites
// gateway outcomes.
type Payment struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentMethodID uuid.UUID           `gorm:"column:payment_method_id;type:uuid;not null;index"`
	StoreID         *uuid.UUID          `gorm:"column:store_id;type:uuid;index"`
	SourceID        *uuid.UUID          `gorm:"column:source_id;type:uuid"`
	Operation       string              `gorm:"column:operation;not null"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        string              `gorm:"column:currency;not null"`
	Status          enums.PaymentStatus `gorm:"column:status;type:payment_status;not null"`
	GatewayMessage  string              `gorm:"column:gateway_message"`
	TransactionRef  *string             `gorm:"column:transaction_ref;index"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
