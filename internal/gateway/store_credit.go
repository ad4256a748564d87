package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/internal/storecredit"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
)

// storeCreditGateway charges against the per-store balance ledger. There is
// no external provider; success and failure come from balance math, and the
// hold ID serves as the transaction reference.
type storeCreditGateway struct {
	ledger *storecredit.Ledger
}

// NewStoreCreditGatewayBuilder returns the store-credit builder for the
// capability table. The ledger is shared across records; store-credit
// preferences carry no credentials, so every record resolves to the same
// backing gateway behavior.
func NewStoreCreditGatewayBuilder(ledger *storecredit.Ledger) Builder {
	return func(ctx context.Context, method *models.PaymentMethod, prefs *preferences.Store) (Gateway, error) {
		return &storeCreditGateway{ledger: ledger}, nil
	}
}

func (g *storeCreditGateway) Authorize(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error) {
	storeID, err := storeFromSource(source)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Authorize(ctx, storeID, amount)
	return resultFromHold(hold, err)
}

func (g *storeCreditGateway) Purchase(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error) {
	storeID, err := storeFromSource(source)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Purchase(ctx, storeID, amount)
	return resultFromHold(hold, err)
}

func (g *storeCreditGateway) Capture(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error) {
	holdID, err := parseHoldRef(transactionRef)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Capture(ctx, holdID)
	return resultFromHold(hold, err)
}

func (g *storeCreditGateway) Void(ctx context.Context, transactionRef string, opts Options) (*Result, error) {
	holdID, err := parseHoldRef(transactionRef)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Void(ctx, holdID)
	return resultFromHold(hold, err)
}

func (g *storeCreditGateway) Credit(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error) {
	holdID, err := parseHoldRef(transactionRef)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Credit(ctx, holdID, amount)
	return resultFromHold(hold, err)
}

func (g *storeCreditGateway) cancelHold(ctx context.Context, transactionRef string) (*Result, error) {
	holdID, err := parseHoldRef(transactionRef)
	if err != nil {
		return nil, err
	}
	hold, err := g.ledger.Cancel(ctx, holdID)
	return resultFromHold(hold, err)
}

func storeFromSource(source *models.PaymentSource) (uuid.UUID, error) {
	if source == nil || source.StoreID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "store credit requires a store-scoped source")
	}
	if source.Kind != enums.SourceKindStoreCredit {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "source kind does not match store credit")
	}
	return source.StoreID, nil
}

func parseHoldRef(transactionRef string) (uuid.UUID, error) {
	id, err := uuid.Parse(transactionRef)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed store credit transaction reference")
	}
	return id, nil
}

// Balance declines surface as failed results, not errors.
func resultFromHold(hold *models.StoreCreditHold, err error) (*Result, error) {
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			return &Result{Success: false, Message: pkgerrors.As(err).Message()}, nil
		}
		return nil, err
	}
	return &Result{
		Success:        true,
		Message:        string(hold.Status),
		TransactionRef: hold.ID.String(),
	}, nil
}
