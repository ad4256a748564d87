package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborpay/harborpay-backend/pkg/enums"
)

// PaymentSource is a reusable vaulted source (a card on file, a store-credit
// grant). Variants with SourceKindNone never own rows here.
type PaymentSource struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentMethodID uuid.UUID        `gorm:"column:payment_method_id;type:uuid;not null;index"`
	StoreID         uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	Kind            enums.SourceKind `gorm:"column:kind;type:source_kind;not null"`
	GatewaySourceID *string          `gorm:"column:gateway_source_id;unique"`
	Brand           *string          `gorm:"column:brand"`
	Last4           *string          `gorm:"column:last4"`
	ExpMonth        *int             `gorm:"column:exp_month"`
	ExpYear         *int             `gorm:"column:exp_year"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
