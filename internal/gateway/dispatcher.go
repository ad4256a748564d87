package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	"github.com/harborpay/harborpay-backend/pkg/metrics"
)

// Operation names as they appear in dispatch routes, logs, and metrics.
const (
	OpAuthorize = "authorize"
	OpPurchase  = "purchase"
	OpCapture   = "capture"
	OpVoid      = "void"
	OpCredit    = "credit"
	OpCancel    = "cancel"
)

// Dispatcher resolves the gateway for a payment method record and forwards
// one operation to it. Results come back exactly as the gateway reported
// them; a declined charge is a failed Result, not an error.
type Dispatcher struct {
	factory *Factory
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger
}

func NewDispatcher(factory *Factory, m *metrics.DispatchMetrics, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		metrics: m,
		logg:    logg,
	}
}

func (d *Dispatcher) Authorize(ctx context.Context, method *models.PaymentMethod, amount decimal.Decimal, source *models.PaymentSource) (*Result, error) {
	return d.charge(ctx, OpAuthorize, method, amount, source)
}

func (d *Dispatcher) Purchase(ctx context.Context, method *models.PaymentMethod, amount decimal.Decimal, source *models.PaymentSource) (*Result, error) {
	return d.charge(ctx, OpPurchase, method, amount, source)
}

func (d *Dispatcher) Capture(ctx context.Context, method *models.PaymentMethod, amount decimal.Decimal, transactionRef string) (*Result, error) {
	if err := validateRef(transactionRef); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return d.dispatch(ctx, OpCapture, method, func(ctx context.Context, gw Gateway, opts Options) (*Result, error) {
		return gw.Capture(ctx, amount, transactionRef, opts)
	})
}

func (d *Dispatcher) Void(ctx context.Context, method *models.PaymentMethod, transactionRef string) (*Result, error) {
	if err := validateRef(transactionRef); err != nil {
		return nil, err
	}
	return d.dispatch(ctx, OpVoid, method, func(ctx context.Context, gw Gateway, opts Options) (*Result, error) {
		return gw.Void(ctx, transactionRef, opts)
	})
}

func (d *Dispatcher) Credit(ctx context.Context, method *models.PaymentMethod, amount decimal.Decimal, transactionRef string) (*Result, error) {
	if err := validateRef(transactionRef); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return d.dispatch(ctx, OpCredit, method, func(ctx context.Context, gw Gateway, opts Options) (*Result, error) {
		return gw.Credit(ctx, amount, transactionRef, opts)
	})
}

// Cancel voids an authorization through the variant's cancel capability.
// Variants without one fail with a not-implemented error.
func (d *Dispatcher) Cancel(ctx context.Context, method *models.PaymentMethod, transactionRef string) (*Result, error) {
	if err := validateRef(transactionRef); err != nil {
		return nil, err
	}
	capability, err := d.factory.Capability(method)
	if err != nil {
		return nil, err
	}
	return d.dispatch(ctx, OpCancel, method, func(ctx context.Context, gw Gateway, opts Options) (*Result, error) {
		return capability.CancelTransaction(ctx, gw, transactionRef)
	})
}

// VaultSource exchanges a one-time card token for a reusable gateway
// reference. Variants whose gateway cannot store cards fail with a
// not-implemented error.
func (d *Dispatcher) VaultSource(ctx context.Context, method *models.PaymentMethod, req VaultRequest) (*VaultedCard, error) {
	gw, err := d.factory.Resolve(ctx, method)
	if err != nil {
		return nil, err
	}
	vaulter, ok := gw.(Vaulter)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotImplemented, "payment method does not support stored sources")
	}
	ctx = d.logg.WithFields(ctx, map[string]any{
		"payment_method_id": method.ID.String(),
		"variant":           method.Variant.String(),
		"operation":         "vault",
	})
	vaulted, err := vaulter.Vault(ctx, req)
	if err != nil {
		d.logg.Error(ctx, "card vaulting failed", err)
		return nil, err
	}
	d.logg.Info(ctx, "card vaulted")
	return vaulted, nil
}

// Forget drops the cached gateway for a deleted record. Preference edits
// invalidate implicitly via the fingerprint.
func (d *Dispatcher) Forget(id uuid.UUID) {
	d.factory.Invalidate(id)
}

func (d *Dispatcher) charge(ctx context.Context, op string, method *models.PaymentMethod, amount decimal.Decimal, source *models.PaymentSource) (*Result, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	capability, err := d.factory.Capability(method)
	if err != nil {
		return nil, err
	}
	if source == nil && capability.SourceRequired() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required for this payment method")
	}
	if source != nil && !capability.SupportsSource(source) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is not supported by this payment method")
	}
	return d.dispatch(ctx, op, method, func(ctx context.Context, gw Gateway, opts Options) (*Result, error) {
		if op == OpPurchase {
			return gw.Purchase(ctx, amount, source, opts)
		}
		return gw.Authorize(ctx, amount, source, opts)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, op string, method *models.PaymentMethod, call func(context.Context, Gateway, Options) (*Result, error)) (*Result, error) {
	gw, err := d.factory.Resolve(ctx, method)
	if err != nil {
		return nil, err
	}
	prefs, err := method.PreferenceStore()
	if err != nil {
		return nil, err
	}

	ctx = d.logg.WithFields(ctx, map[string]any{
		"payment_method_id": method.ID.String(),
		"variant":           method.Variant.String(),
		"operation":         op,
	})
	start := time.Now()
	result, err := call(ctx, gw, Options(prefs.Options()))
	d.metrics.ObserveDuration(method.Variant.String(), op, time.Since(start))
	if err != nil {
		d.metrics.IncFailure(method.Variant.String(), op)
		d.logg.Error(ctx, "gateway dispatch failed", err)
		return nil, err
	}
	if result.Success {
		d.metrics.IncSuccess(method.Variant.String(), op)
	} else {
		d.metrics.IncFailure(method.Variant.String(), op)
	}
	d.logg.Info(d.logg.WithFields(ctx, map[string]any{
		"success":         result.Success,
		"transaction_ref": result.TransactionRef,
	}), "gateway dispatch complete")
	return result, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() || amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	return nil
}

func validateRef(transactionRef string) error {
	if transactionRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	return nil
}
