package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
)

// Options is the preference snapshot handed to gateway construction and
// forwarded on every call. A login key never appears with a nil value;
// preferences.Store drops it before the snapshot leaves the record.
type Options map[string]any

// Result is whatever the external gateway reported. This layer forwards it
// untouched: no retries, no classification, no suppression.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// Gateway is the external capability behind a payment method variant:
// authorize/purchase/capture/void/credit against a payment provider.
type Gateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error)
	Purchase(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error)
	Capture(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error)
	Void(ctx context.Context, transactionRef string, opts Options) (*Result, error)
	Credit(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error)
}

// VaultRequest carries the one-time card token exchanged for a reusable
// gateway reference.
type VaultRequest struct {
	Token             string
	CardholderName    string
	VerificationToken string
	IdempotencyKey    string
}

// VaultedCard is the provider's record of a stored card.
type VaultedCard struct {
	GatewaySourceID string
	Brand           *string
	Last4           *string
	ExpMonth        *int
	ExpYear         *int
}

// Vaulter is implemented by gateways that can store a card for reuse.
type Vaulter interface {
	Vault(ctx context.Context, req VaultRequest) (*VaultedCard, error)
}
