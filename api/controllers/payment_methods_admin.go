package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborpay/harborpay-backend/api/responses"
	"github.com/harborpay/harborpay-backend/api/validators"
	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
)

type paymentMethodCreateRequest struct {
	Name             string         `json:"name" validate:"required"`
	Variant          string         `json:"variant" validate:"required"`
	Active           *bool          `json:"active,omitempty"`
	AvailableToUsers *bool          `json:"available_to_users,omitempty"`
	AvailableToAdmin *bool          `json:"available_to_admin,omitempty"`
	AutoCapture      *bool          `json:"auto_capture,omitempty"`
	Preferences      map[string]any `json:"preferences,omitempty"`
	StoreIDs         []string       `json:"store_ids,omitempty"`
}

type paymentMethodUpdateRequest struct {
	Name             *string  `json:"name,omitempty"`
	Active           *bool    `json:"active,omitempty"`
	AvailableToUsers *bool    `json:"available_to_users,omitempty"`
	AvailableToAdmin *bool    `json:"available_to_admin,omitempty"`
	AutoCapture      *bool    `json:"auto_capture,omitempty"`
	Position         *int     `json:"position,omitempty"`
	StoreIDs         []string `json:"store_ids,omitempty"`
}

type preferencesUpdateRequest struct {
	Preferences map[string]any `json:"preferences" validate:"required"`
}

// AdminPaymentMethodCreate registers a new payment method.
func AdminPaymentMethodCreate(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentMethodCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variant, err := enums.ParseVariant(payload.Variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		storeIDs, err := parseUUIDList(payload.StoreIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Create(r.Context(), registry.CreatePaymentMethodDTO{
			Name:             payload.Name,
			Variant:          variant,
			Active:           payload.Active,
			AvailableToUsers: payload.AvailableToUsers,
			AvailableToAdmin: payload.AvailableToAdmin,
			AutoCapture:      payload.AutoCapture,
			Preferences:      payload.Preferences,
			StoreIDs:         storeIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registry.FromModel(method, svc.AutoCapture(method)))
	}
}

// AdminPaymentMethodList lists the registry in position order. Admin sees
// inactive records too unless active_only is set.
func AdminPaymentMethodList(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var methods []registry.PaymentMethodDTO
		if activeOnly {
			listed, listErr := svc.AvailableToAdmin(r.Context())
			if listErr != nil {
				responses.WriteError(r.Context(), logg, w, listErr)
				return
			}
			methods = dtoList(svc, listed)
		} else {
			listed, listErr := svc.OrderedByPosition(r.Context())
			if listErr != nil {
				responses.WriteError(r.Context(), logg, w, listErr)
				return
			}
			methods = dtoList(svc, listed)
		}
		responses.WriteSuccess(w, methods)
	}
}

// AdminPaymentMethodGet returns one record, optionally including deleted.
func AdminPaymentMethodGet(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeDeleted, err := validators.ParseQueryBool(r, "include_deleted", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := svc.Get(r.Context(), id, includeDeleted)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registry.FromModel(method, svc.AutoCapture(method)))
	}
}

// AdminPaymentMethodUpdate patches flags, name, store scoping, or position.
func AdminPaymentMethodUpdate(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload paymentMethodUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeIDs, err := parseUUIDList(payload.StoreIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Update(r.Context(), id, registry.UpdatePaymentMethodDTO{
			Name:             payload.Name,
			Active:           payload.Active,
			AvailableToUsers: payload.AvailableToUsers,
			AvailableToAdmin: payload.AvailableToAdmin,
			AutoCapture:      payload.AutoCapture,
			StoreIDs:         storeIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Position != nil {
			method, err = svc.Reorder(r.Context(), id, *payload.Position)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, registry.FromModel(method, svc.AutoCapture(method)))
	}
}

// AdminPaymentMethodUpdatePreferences replaces the preference values.
func AdminPaymentMethodUpdatePreferences(svc *registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload preferencesUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := svc.UpdatePreferences(r.Context(), id, payload.Preferences)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registry.FromModel(method, svc.AutoCapture(method)))
	}
}

// AdminPaymentMethodDelete soft deletes a record and drops its cached
// gateway so the next resolve cannot revive the deleted configuration.
func AdminPaymentMethodDelete(svc *registry.Service, dispatcher *gateway.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SoftDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dispatcher.Forget(id)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func dtoList(svc *registry.Service, methods []models.PaymentMethod) []registry.PaymentMethodDTO {
	return registry.FromModels(methods, svc.AutoCaptureDefault())
}

func parseUUIDList(raw []string) ([]uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_ids must contain valid uuids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
