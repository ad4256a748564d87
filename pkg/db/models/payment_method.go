package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/enums"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
)

// PaymentMethod is one configured payment method. All variants share this
// row shape; the variant tag selects behavior from the gateway capability
// table. Rows are soft-deleted and excluded from default queries.
type PaymentMethod struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Variant          enums.Variant   `gorm:"column:variant;type:payment_method_variant;not null;index"`
	Active           bool            `gorm:"column:active;not null;default:true"`
	AvailableToUsers bool            `gorm:"column:available_to_users;not null;default:true"`
	AvailableToAdmin bool            `gorm:"column:available_to_admin;not null;default:true"`
	Position         int             `gorm:"column:position;not null;index"`
	AutoCapture      *bool           `gorm:"column:auto_capture"`
	Preferences      json.RawMessage `gorm:"column:preferences;type:jsonb"`
	Stores           []Store         `gorm:"many2many:store_payment_methods"`
	Payments         []Payment       `gorm:"foreignKey:PaymentMethodID"`
	PaymentSources   []PaymentSource `gorm:"foreignKey:PaymentMethodID"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

// PreferenceStore decodes the persisted preference blob against the
// variant's schema.
func (m *PaymentMethod) PreferenceStore() (*preferences.Store, error) {
	return preferences.FromJSON(m.Variant, m.Preferences)
}

// ResolveAutoCapture returns the record-level override when set, otherwise
// the registry-wide default.
func (m *PaymentMethod) ResolveAutoCapture(globalDefault bool) bool {
	if m.AutoCapture != nil {
		return *m.AutoCapture
	}
	return globalDefault
}
