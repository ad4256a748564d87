package gateway

import (
	"context"
	"fmt"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
)

// Builder constructs a gateway instance for one payment method record, using
// the record's resolved preferences for credentials and mode selection.
type Builder func(ctx context.Context, method *models.PaymentMethod, prefs *preferences.Store) (Gateway, error)

// CancelFunc voids a previously authorized transaction by reference.
type CancelFunc func(ctx context.Context, gw Gateway, transactionRef string) (*Result, error)

// Capability describes what one payment method variant can do. Every field
// except Variant is optional and falls back to an explicit default:
// Build nil means the variant has no external gateway, Supports nil means
// every source is accepted, Cancel nil means cancellation is unsupported,
// and SourceOptional false means authorize/purchase require a source.
type Capability struct {
	Variant           enums.Variant
	Build             Builder
	SourceKind        enums.SourceKind
	SourceOptional    bool
	ProfilesSupported bool
	Supports          func(source *models.PaymentSource) bool
	Cancel            CancelFunc
}

func (c Capability) MethodType() string {
	return c.Variant.MethodType()
}

func (c Capability) IsStoreCredit() bool {
	return c.Variant.IsStoreCredit()
}

func (c Capability) SourceRequired() bool {
	return !c.SourceOptional
}

// SupportsSource reports whether the variant can charge the given source.
// A nil source is answered by SourceRequired, not here.
func (c Capability) SupportsSource(source *models.PaymentSource) bool {
	if c.Supports == nil {
		return true
	}
	return c.Supports(source)
}

// BuildGateway constructs the gateway for a record, or fails with a
// not-implemented error for variants that have no external capability.
func (c Capability) BuildGateway(ctx context.Context, method *models.PaymentMethod, prefs *preferences.Store) (Gateway, error) {
	if c.Build == nil {
		return nil, pkgerrors.NotImplemented(fmt.Sprintf("gateway for variant %q", c.Variant))
	}
	return c.Build(ctx, method, prefs)
}

// CancelTransaction voids an authorization by reference, or fails with a
// not-implemented error when the variant cannot cancel.
func (c Capability) CancelTransaction(ctx context.Context, gw Gateway, transactionRef string) (*Result, error) {
	if c.Cancel == nil {
		return nil, pkgerrors.NotImplemented(fmt.Sprintf("cancel for variant %q", c.Variant))
	}
	return c.Cancel(ctx, gw, transactionRef)
}

// CapabilityTable maps variants to capabilities. The table is built once at
// startup and read-only afterwards.
type CapabilityTable struct {
	byVariant map[enums.Variant]Capability
}

func NewCapabilityTable(caps ...Capability) *CapabilityTable {
	t := &CapabilityTable{byVariant: make(map[enums.Variant]Capability, len(caps))}
	for _, c := range caps {
		t.byVariant[c.Variant] = c
	}
	return t
}

// For returns the capability for a variant. Unknown variants fail with a
// not-implemented error rather than a zero capability.
func (t *CapabilityTable) For(variant enums.Variant) (Capability, error) {
	c, ok := t.byVariant[variant]
	if !ok {
		return Capability{}, pkgerrors.NotImplemented(fmt.Sprintf("variant %q", variant))
	}
	return c, nil
}
