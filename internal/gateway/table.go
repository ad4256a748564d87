package gateway

import (
	"context"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
)

// DefaultTable assembles the shipped variant capabilities. Check is the
// offline variant: no gateway, no sources, operations answer not-implemented.
func DefaultTable(cardBuilder, storeCreditBuilder Builder) *CapabilityTable {
	return NewCapabilityTable(
		Capability{
			Variant:           enums.VariantCreditCard,
			Build:             cardBuilder,
			SourceKind:        enums.SourceKindCard,
			ProfilesSupported: true,
			Supports: func(source *models.PaymentSource) bool {
				return source.Kind == enums.SourceKindCard && source.GatewaySourceID != nil
			},
			Cancel: cancelViaVoid,
		},
		Capability{
			Variant:    enums.VariantStoreCredit,
			Build:      storeCreditBuilder,
			SourceKind: enums.SourceKindStoreCredit,
			Supports: func(source *models.PaymentSource) bool {
				return source.Kind == enums.SourceKindStoreCredit
			},
			Cancel: cancelStoreCredit,
		},
		Capability{
			Variant:        enums.VariantCheck,
			SourceKind:     enums.SourceKindNone,
			SourceOptional: true,
		},
	)
}

func cancelViaVoid(ctx context.Context, gw Gateway, transactionRef string) (*Result, error) {
	return gw.Void(ctx, transactionRef, nil)
}

// cancelStoreCredit unwinds the hold regardless of stage: authorized holds
// are voided, captured ones are refunded in full.
func cancelStoreCredit(ctx context.Context, gw Gateway, transactionRef string) (*Result, error) {
	sc, ok := gw.(*storeCreditGateway)
	if !ok {
		return gw.Void(ctx, transactionRef, nil)
	}
	return sc.cancelHold(ctx, transactionRef)
}
