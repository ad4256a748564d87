package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a storefront tenant. A store with no associated payment methods
// accepts every globally configured method; rows in store_payment_methods
// restrict it to an explicit subset.
type Store struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Code           string          `gorm:"column:code;not null;unique"`
	DefaultStore   bool            `gorm:"column:default_store;not null;default:false"`
	PaymentMethods []PaymentMethod `gorm:"many2many:store_payment_methods"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
