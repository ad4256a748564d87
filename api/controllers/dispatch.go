package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/harborpay-backend/api/responses"
	"github.com/harborpay/harborpay-backend/api/validators"
	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
)

type dispatchRequest struct {
	Amount         decimal.Decimal `json:"amount,omitempty"`
	SourceID       *string         `json:"source_id,omitempty"`
	StoreID        *string         `json:"store_id,omitempty"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
}

type dispatchResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	PaymentID      string `json:"payment_id,omitempty"`
}

// Dispatch forwards one gateway operation for a payment method. The op path
// segment selects authorize, purchase, capture, void, credit, or process;
// process picks authorize or purchase from the method's auto-capture policy.
func Dispatch(svc *registry.Service, dispatcher *gateway.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := validators.ParsePathUUID(chi.URLParam(r, "methodID"), "methodID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		op := chi.URLParam(r, "op")

		var payload dispatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Get(r.Context(), methodID, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !method.Active {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeStateConflict, "payment method is inactive"))
			return
		}

		var source *models.PaymentSource
		if payload.SourceID != nil {
			sourceID, parseErr := validators.ParsePathUUID(*payload.SourceID, "source_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			source, err = svc.FindSource(r.Context(), sourceID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if source.PaymentMethodID != method.ID {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "source belongs to a different payment method"))
				return
			}
		}

		if op == "process" {
			if svc.AutoCapture(method) {
				op = gateway.OpPurchase
			} else {
				op = gateway.OpAuthorize
			}
		}

		result, err := runOperation(r, dispatcher, op, method, payload, source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment := buildPaymentRecord(op, method, payload, source, result, svc.Currency())
		if recordErr := svc.RecordPayment(r.Context(), payment); recordErr != nil {
			logg.Error(r.Context(), "record payment", recordErr)
		}

		responses.WriteSuccess(w, dispatchResponse{
			Success:        result.Success,
			Message:        result.Message,
			TransactionRef: result.TransactionRef,
			PaymentID:      payment.ID.String(),
		})
	}
}

func runOperation(r *http.Request, dispatcher *gateway.Dispatcher, op string, method *models.PaymentMethod, payload dispatchRequest, source *models.PaymentSource) (*gateway.Result, error) {
	ctx := r.Context()
	switch op {
	case gateway.OpAuthorize:
		return dispatcher.Authorize(ctx, method, payload.Amount, source)
	case gateway.OpPurchase:
		return dispatcher.Purchase(ctx, method, payload.Amount, source)
	case gateway.OpCapture:
		return dispatcher.Capture(ctx, method, payload.Amount, payload.TransactionRef)
	case gateway.OpVoid:
		return dispatcher.Void(ctx, method, payload.TransactionRef)
	case gateway.OpCredit:
		return dispatcher.Credit(ctx, method, payload.Amount, payload.TransactionRef)
	case gateway.OpCancel:
		return dispatcher.Cancel(ctx, method, payload.TransactionRef)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment operation").
		WithDetails(map[string]any{"operation": op})
}

func buildPaymentRecord(op string, method *models.PaymentMethod, payload dispatchRequest, source *models.PaymentSource, result *gateway.Result, currency string) *models.Payment {
	payment := &models.Payment{
		ID:              uuid.New(),
		PaymentMethodID: method.ID,
		Operation:       op,
		Amount:          payload.Amount,
		Currency:        currency,
		Status:          statusForOutcome(op, result.Success),
		GatewayMessage:  result.Message,
	}
	if result.TransactionRef != "" {
		ref := result.TransactionRef
		payment.TransactionRef = &ref
	}
	if source != nil {
		payment.SourceID = &source.ID
		payment.StoreID = &source.StoreID
	} else if payload.StoreID != nil {
		if storeID, err := uuid.Parse(*payload.StoreID); err == nil {
			payment.StoreID = &storeID
		}
	}
	return payment
}

func statusForOutcome(op string, success bool) enums.PaymentStatus {
	if !success {
		return enums.PaymentStatusFailed
	}
	switch op {
	case gateway.OpAuthorize:
		return enums.PaymentStatusAuthorized
	case gateway.OpPurchase, gateway.OpCapture:
		return enums.PaymentStatusCaptured
	case gateway.OpVoid, gateway.OpCancel:
		return enums.PaymentStatusVoided
	case gateway.OpCredit:
		return enums.PaymentStatusRefunded
	}
	return enums.PaymentStatusFailed
}
