package gateway

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"

	"github.com/harborpay/harborpay-backend/pkg/config"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
	"github.com/harborpay/harborpay-backend/pkg/square"
)

// Square payment statuses treated as gateway success.
var squareSuccessStatuses = map[string]bool{
	"APPROVED":  true,
	"COMPLETED": true,
	"PENDING":   true,
}

// cardGateway charges vaulted cards through Square. The Square environment
// is fixed at construction from the record's server preference; two records
// with different modes get independent clients.
type cardGateway struct {
	client     *square.Client
	locationID string
	currency   string
}

// NewCardGatewayBuilder returns the credit-card builder for the capability
// table. The record's server preference selects the Square environment, its
// login preference overrides the configured access token, and its
// location_id preference overrides the configured location.
func NewCardGatewayBuilder(cfg config.SquareConfig, currency string, logg *logger.Logger) Builder {
	return func(ctx context.Context, method *models.PaymentMethod, prefs *preferences.Store) (Gateway, error) {
		mode := prefs.GetString(preferences.KeyServer)
		if mode == "" {
			mode = square.ModeTest
		}

		token := cfg.AccessToken
		if mode == square.ModeTest && cfg.SandboxAccessToken != "" {
			token = cfg.SandboxAccessToken
		}
		if login := prefs.GetString(preferences.KeyLogin); login != "" {
			token = login
		}
		if token == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no square access token configured for this payment method")
		}

		client, err := square.NewClient(ctx, token, mode, logg)
		if err != nil {
			return nil, err
		}

		locationID := prefs.GetString(preferences.KeyLocationID)
		if locationID == "" {
			locationID = cfg.LocationID
		}
		return &cardGateway{
			client:     client,
			locationID: locationID,
			currency:   currency,
		}, nil
	}
}

func (g *cardGateway) Authorize(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error) {
	return g.createPayment(ctx, amount, source, false)
}

func (g *cardGateway) Purchase(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, opts Options) (*Result, error) {
	return g.createPayment(ctx, amount, source, true)
}

func (g *cardGateway) Capture(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error) {
	payment, err := g.client.CompletePayment(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	return resultFromPayment(payment), nil
}

func (g *cardGateway) Void(ctx context.Context, transactionRef string, opts Options) (*Result, error) {
	payment, err := g.client.CancelPayment(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	result := resultFromPayment(payment)
	// Square reports CANCELED on a successful void.
	if strings.EqualFold(result.Message, "CANCELED") {
		result.Success = true
	}
	return result, nil
}

func (g *cardGateway) Credit(ctx context.Context, amount decimal.Decimal, transactionRef string, opts Options) (*Result, error) {
	refund, err := g.client.RefundPayment(ctx, square.RefundCreateParams{
		PaymentID:   transactionRef,
		AmountCents: toCents(amount),
		Currency:    g.currency,
	})
	if err != nil {
		return nil, err
	}
	return resultFromRefund(refund), nil
}

func (g *cardGateway) createPayment(ctx context.Context, amount decimal.Decimal, source *models.PaymentSource, autocomplete bool) (*Result, error) {
	if source == nil || source.GatewaySourceID == nil || *source.GatewaySourceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card source has no gateway reference")
	}
	payment, err := g.client.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:  toCents(amount),
		Currency:     g.currency,
		LocationID:   g.locationID,
		SourceID:     *source.GatewaySourceID,
		Autocomplete: autocomplete,
		ReferenceID:  source.ID.String(),
	})
	if err != nil {
		return nil, err
	}
	return resultFromPayment(payment), nil
}

// Vault exchanges a one-time card token for a Square card on file.
func (g *cardGateway) Vault(ctx context.Context, req VaultRequest) (*VaultedCard, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card token is required")
	}
	card, err := g.client.CreateCard(ctx, square.CardCreateParams{
		SourceID:          token,
		CardholderName:    strings.TrimSpace(req.CardholderName),
		VerificationToken: strings.TrimSpace(req.VerificationToken),
		IdempotencyKey:    req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return vaultedCardFromSquare(card)
}

func vaultedCardFromSquare(card *sq.Card) (*VaultedCard, error) {
	if card == nil || card.GetID() == nil || strings.TrimSpace(*card.GetID()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square card response missing id")
	}
	vaulted := &VaultedCard{
		GatewaySourceID: strings.TrimSpace(*card.GetID()),
		Last4:           card.GetLast4(),
		ExpMonth:        intPointer(card.GetExpMonth()),
		ExpYear:         intPointer(card.GetExpYear()),
	}
	if brand := card.GetCardBrand(); brand != nil && string(*brand) != "" {
		value := string(*brand)
		vaulted.Brand = &value
	}
	return vaulted, nil
}

func intPointer(value *int64) *int {
	if value == nil {
		return nil
	}
	v := int(*value)
	return &v
}

func resultFromPayment(payment *sq.Payment) *Result {
	if payment == nil {
		return &Result{Success: false, Message: "no payment returned"}
	}
	status := derefString(payment.GetStatus())
	return &Result{
		Success:        squareSuccessStatuses[strings.ToUpper(status)],
		Message:        status,
		TransactionRef: derefString(payment.GetID()),
	}
}

func resultFromRefund(refund *sq.PaymentRefund) *Result {
	if refund == nil {
		return &Result{Success: false, Message: "no refund returned"}
	}
	status := derefString(refund.GetStatus())
	return &Result{
		Success:        squareSuccessStatuses[strings.ToUpper(status)],
		Message:        status,
		TransactionRef: refund.GetID(),
	}
}

// toCents converts a decimal amount to the gateway's minor units.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
