package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/pkg/enums"
)

// StoreCreditHold is one authorization against a store-credit balance. The
// hold's ID doubles as the gateway transaction reference, so capture, void,
// and credit can find the original amount without a separate lookup key.
type StoreCreditHold struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreCreditID uuid.UUID           `gorm:"column:store_credit_id;type:uuid;not null;index"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:payment_status;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
