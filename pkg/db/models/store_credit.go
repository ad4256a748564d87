package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreCredit is the per-store balance backing the store-credit gateway.
// Authorizations hold against Balance; captures settle the hold.
type StoreCredit struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID          uuid.UUID       `gorm:"column:store_id;type:uuid;not null;unique"`
	Balance          decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	AuthorizedAmount decimal.Decimal `gorm:"column:authorized_amount;type:numeric(12,2);not null;default:0"`
	Currency         string          `gorm:"column:currency;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
