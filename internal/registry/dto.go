package registry

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
)

// PaymentMethodDTO exposes a registry record in API responses. Options is
// the resolved preference snapshot with secret keys redacted.
type PaymentMethodDTO struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Variant          enums.Variant `json:"variant"`
	MethodType       string        `json:"method_type"`
	Active           bool          `json:"active"`
	AvailableToUsers bool          `json:"available_to_users"`
	AvailableToAdmin bool          `json:"available_to_admin"`
	// DisplayOn mirrors the availability flags for clients still reading
	// the legacy enum.
	DisplayOn   enums.DisplayTarget `json:"display_on"`
	Position    int                 `json:"position"`
	AutoCapture bool                `json:"auto_capture"`
	Options     map[string]any      `json:"options"`
	Deleted     bool                `json:"deleted,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreatePaymentMethodDTO holds creation-time data for a new payment method.
type CreatePaymentMethodDTO struct {
	Name             string
	Variant          enums.Variant
	Active           *bool
	AvailableToUsers *bool
	AvailableToAdmin *bool
	AutoCapture      *bool
	Preferences      map[string]any
	StoreIDs         []uuid.UUID
}

// UpdatePaymentMethodDTO holds the mutable admin fields. Nil means leave
// the field unchanged.
type UpdatePaymentMethodDTO struct {
	Name             *string
	Active           *bool
	AvailableToUsers *bool
	AvailableToAdmin *bool
	AutoCapture      *bool
	StoreIDs         []uuid.UUID
}

// FromModel maps the persisted payment method into a DTO, resolving the
// auto-capture default and redacting credentials from the options snapshot.
func FromModel(m *models.PaymentMethod, autoCaptureDefault bool) *PaymentMethodDTO {
	if m == nil {
		return nil
	}

	options := map[string]any{}
	if prefs, err := m.PreferenceStore(); err == nil {
		options = prefs.Options()
		delete(options, preferences.KeyPassword)
		delete(options, preferences.KeyLogin)
	}

	return &PaymentMethodDTO{
		ID:               m.ID,
		Name:             m.Name,
		Variant:          m.Variant,
		MethodType:       m.Variant.MethodType(),
		Active:           m.Active,
		AvailableToUsers: m.AvailableToUsers,
		AvailableToAdmin: m.AvailableToAdmin,
		DisplayOn:        enums.DisplayTargetForFlags(m.AvailableToUsers, m.AvailableToAdmin),
		Position:         m.Position,
		AutoCapture:      m.ResolveAutoCapture(autoCaptureDefault),
		Options:          options,
		Deleted:          m.DeletedAt.Valid,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromModels maps a list preserving order.
func FromModels(methods []models.PaymentMethod, autoCaptureDefault bool) []PaymentMethodDTO {
	dtos := make([]PaymentMethodDTO, 0, len(methods))
	for i := range methods {
		dtos = append(dtos, *FromModel(&methods[i], autoCaptureDefault))
	}
	return dtos
}

// SourceDTO exposes a vaulted payment source.
type SourceDTO struct {
	ID              uuid.UUID        `json:"id"`
	PaymentMethodID uuid.UUID        `json:"payment_method_id"`
	StoreID         uuid.UUID        `json:"store_id"`
	Kind            enums.SourceKind `json:"kind"`
	Brand           *string          `json:"brand,omitempty"`
	Last4           *string          `json:"last4,omitempty"`
	ExpMonth        *int             `json:"exp_month,omitempty"`
	ExpYear         *int             `json:"exp_year,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// SourceFromModel maps a persisted source, never exposing the gateway token.
func SourceFromModel(m *models.PaymentSource) *SourceDTO {
	if m == nil {
		return nil
	}
	return &SourceDTO{
		ID:              m.ID,
		PaymentMethodID: m.PaymentMethodID,
		StoreID:         m.StoreID,
		Kind:            m.Kind,
		Brand:           m.Brand,
		Last4:           m.Last4,
		ExpMonth:        m.ExpMonth,
		ExpYear:         m.ExpYear,
		CreatedAt:       m.CreatedAt,
	}
}

// SourcesFromModels maps a list preserving order.
func SourcesFromModels(sources []models.PaymentSource) []SourceDTO {
	dtos := make([]SourceDTO, 0, len(sources))
	for i := range sources {
		dtos = append(dtos, *SourceFromModel(&sources[i]))
	}
	return dtos
}
