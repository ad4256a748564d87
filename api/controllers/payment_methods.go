package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborpay/harborpay-backend/api/responses"
	"github.com/harborpay/harborpay-backend/api/validators"
	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	"github.com/harborpay/harborpay-backend/pkg/logger"
)

// PaymentMethodList is the storefront surface: active, user-visible methods
// in display order, optionally scoped to a store. A legacy display_on query
// parameter routes through the deprecated availability filter.
func PaymentMethodList(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseQueryUUID(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if target := r.URL.Query().Get("display_on"); target != "" {
			methods, availErr := svc.Available(r.Context(), target, storeID)
			if availErr != nil {
				responses.WriteError(r.Context(), logg, w, availErr)
				return
			}
			responses.WriteSuccess(w, dtoList(svc, methods))
			return
		}

		methods, err := svc.StorefrontMethods(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtoList(svc, methods))
	}
}

// PaymentMethodSources lists the reusable sources vaulted for a method.
func PaymentMethodSources(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := validators.ParsePathUUID(chi.URLParam(r, "methodID"), "methodID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseQueryUUID(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sources, err := svc.ListSources(r.Context(), methodID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registry.SourcesFromModels(sources))
	}
}

type createSourceRequest struct {
	StoreID         string  `json:"store_id" validate:"required,uuid"`
	Kind            string  `json:"kind" validate:"required"`
	GatewaySourceID *string `json:"gateway_source_id,omitempty"`
	Brand           *string `json:"brand,omitempty"`
	Last4           *string `json:"last4,omitempty" validate:"omitempty,len=4"`
	ExpMonth        *int    `json:"exp_month,omitempty" validate:"omitempty,min=1,max=12"`
	ExpYear         *int    `json:"exp_year,omitempty"`

	// CardToken is a one-time token from the provider's client SDK. When
	// present the server vaults it through the method's gateway and the
	// provider's card record wins over the client-supplied fields above.
	CardToken         *string `json:"card_token,omitempty"`
	CardholderName    *string `json:"cardholder_name,omitempty"`
	VerificationToken *string `json:"verification_token,omitempty"`
}

// PaymentMethodSourceCreate vaults a reusable source against a method.
func PaymentMethodSourceCreate(svc *registry.Service, dispatcher *gateway.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := validators.ParsePathUUID(chi.URLParam(r, "methodID"), "methodID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSourceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParsePathUUID(payload.StoreID, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := &models.PaymentSource{
			ID:              uuid.New(),
			PaymentMethodID: methodID,
			StoreID:         storeID,
			Kind:            enums.SourceKind(payload.Kind),
			GatewaySourceID: payload.GatewaySourceID,
			Brand:           payload.Brand,
			Last4:           payload.Last4,
			ExpMonth:        payload.ExpMonth,
			ExpYear:         payload.ExpYear,
		}

		if token := derefTrimmed(payload.CardToken); token != "" {
			method, err := svc.Get(r.Context(), methodID, false)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			vaulted, err := dispatcher.VaultSource(r.Context(), method, gateway.VaultRequest{
				Token:             token,
				CardholderName:    derefTrimmed(payload.CardholderName),
				VerificationToken: derefTrimmed(payload.VerificationToken),
				IdempotencyKey:    r.Header.Get("Idempotency-Key"),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			source.GatewaySourceID = &vaulted.GatewaySourceID
			source.Brand = vaulted.Brand
			source.Last4 = vaulted.Last4
			source.ExpMonth = vaulted.ExpMonth
			source.ExpYear = vaulted.ExpYear
		}

		if err := svc.CreateSource(r.Context(), source); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registry.SourceFromModel(source))
	}
}

func derefTrimmed(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return strings.TrimSpace(*ptr)
}
