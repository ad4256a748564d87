package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/config"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	"github.com/harborpay/harborpay-backend/pkg/preferences"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service orchestrates the payment method registry: admin lifecycle,
// availability queries, and payment/source persistence for dispatch.
type Service struct {
	repo     Repository
	tx       txRunner
	logg     *logger.Logger
	payments config.PaymentsConfig
}

// ServiceParams groups dependencies for the registry service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Logger   *logger.Logger
	Payments config.PaymentsConfig
}

// NewService builds a registry service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		repo:     params.Repo,
		tx:       params.Tx,
		logg:     params.Logger,
		payments: params.Payments,
	}, nil
}

// Create validates and persists a new payment method, initializing its
// preferences from the variant schema and appending it to the ordering.
func (s *Service) Create(ctx context.Context, dto CreatePaymentMethodDTO) (*models.PaymentMethod, error) {
	if dto.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !dto.Variant.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown variant %q", dto.Variant))
	}

	prefs, err := preferences.NewStore(dto.Variant)
	if err != nil {
		return nil, err
	}
	for key, value := range dto.Preferences {
		if err := prefs.Set(key, value); err != nil {
			return nil, err
		}
	}
	raw, err := prefs.ToJSON()
	if err != nil {
		return nil, err
	}

	method := &models.PaymentMethod{
		ID:               uuid.New(),
		Name:             dto.Name,
		Variant:          dto.Variant,
		Active:           boolOr(dto.Active, true),
		AvailableToUsers: boolOr(dto.AvailableToUsers, true),
		AvailableToAdmin: boolOr(dto.AvailableToAdmin, true),
		AutoCapture:      dto.AutoCapture,
		Preferences:      raw,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		max, err := repo.MaxPosition(ctx)
		if err != nil {
			return err
		}
		method.Position = max + 1
		if err := repo.Create(ctx, method); err != nil {
			return err
		}
		return s.assignStores(ctx, repo, method, dto.StoreIDs)
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithPaymentMethodID(ctx, method.ID.String()), "payment method created")
	return method, nil
}

// Update applies the mutable admin fields. Preference edits go through
// UpdatePreferences, position changes through Reorder.
func (s *Service) Update(ctx context.Context, id uuid.UUID, dto UpdatePaymentMethodDTO) (*models.PaymentMethod, error) {
	var method *models.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := s.mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		if dto.Name != nil {
			if *dto.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
			}
			found.Name = *dto.Name
		}
		if dto.Active != nil {
			found.Active = *dto.Active
		}
		if dto.AvailableToUsers != nil {
			found.AvailableToUsers = *dto.AvailableToUsers
		}
		if dto.AvailableToAdmin != nil {
			found.AvailableToAdmin = *dto.AvailableToAdmin
		}
		if dto.AutoCapture != nil {
			found.AutoCapture = dto.AutoCapture
		}
		if err := repo.Save(ctx, found); err != nil {
			return err
		}
		if dto.StoreIDs != nil {
			if err := s.assignStores(ctx, repo, found, dto.StoreIDs); err != nil {
				return err
			}
		}
		method = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// UpdatePreferences replaces the record's preference values. Every key is
// validated against the variant schema; the persisted blob only carries
// explicit values, so defaults keep resolving at read time. The changed
// fingerprint makes the gateway factory rebuild on next dispatch.
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, values map[string]any) (*models.PaymentMethod, error) {
	var method *models.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := s.mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		prefs, err := preferences.NewStore(found.Variant)
		if err != nil {
			return err
		}
		for key, value := range values {
			if err := prefs.Set(key, value); err != nil {
				return err
			}
		}
		raw, err := prefs.ToJSON()
		if err != nil {
			return err
		}
		found.Preferences = raw
		if err := repo.Save(ctx, found); err != nil {
			return err
		}
		method = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithPaymentMethodID(ctx, id.String()), "payment method preferences updated")
	return method, nil
}

// SetActive toggles the active flag.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.PaymentMethod, error) {
	return s.Update(ctx, id, UpdatePaymentMethodDTO{Active: &active})
}

// Reorder moves a record to the target position, shifting its neighbors.
// The record is parked at position zero first and every displaced row moves
// into a slot the previous move freed.
func (s *Service) Reorder(ctx context.Context, id uuid.UUID, position int) (*models.PaymentMethod, error) {
	if position < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "position must be at least 1")
	}
	var method *models.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := s.mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		ordered, err := repo.OrderedByPosition(ctx)
		if err != nil {
			return err
		}
		// Soft deletes leave gaps, so the live tail is the highest
		// position value, not the row count.
		target := position
		if n := len(ordered); n > 0 && target > ordered[n-1].Position {
			target = ordered[n-1].Position
		}
		if found.Position == target {
			method = found
			return nil
		}

		if err := repo.UpdatePosition(ctx, found.ID, 0); err != nil {
			return err
		}
		if target < found.Position {
			// Moving up: walk the displaced range downward, each row
			// stepping into the slot just vacated above it.
			for i := len(ordered) - 1; i >= 0; i-- {
				p := ordered[i].Position
				if p >= target && p < found.Position {
					if err := repo.UpdatePosition(ctx, ordered[i].ID, p+1); err != nil {
						return err
					}
				}
			}
		} else {
			for i := range ordered {
				p := ordered[i].Position
				if p > found.Position && p <= target {
					if err := repo.UpdatePosition(ctx, ordered[i].ID, p-1); err != nil {
						return err
					}
				}
			}
		}
		if err := repo.UpdatePosition(ctx, found.ID, target); err != nil {
			return err
		}
		found.Position = target
		method = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// SoftDelete hides a record from default queries while keeping it readable
// through FindIncludingDeleted for audit and refunds.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.mustFind(ctx, repo, id); err != nil {
			return err
		}
		return repo.SoftDelete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithPaymentMethodID(ctx, id.String()), "payment method deleted")
	return nil
}

// Get returns one record. With includeDeleted, soft-deleted records are
// still found.
func (s *Service) Get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.PaymentMethod, error) {
	if includeDeleted {
		method, err := s.repo.FindIncludingDeleted(ctx, id)
		if err != nil {
			return nil, err
		}
		if method == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return method, nil
	}
	return s.mustFind(ctx, s.repo, id)
}

func (s *Service) OrderedByPosition(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.repo.OrderedByPosition(ctx)
}

func (s *Service) Active(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.repo.Active(ctx)
}

func (s *Service) AvailableToUsers(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.repo.AvailableToUsers(ctx)
}

func (s *Service) AvailableToAdmin(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.repo.AvailableToAdmin(ctx)
}

// AvailableToStore returns the active methods a store accepts. A store with
// no explicit associations is unrestricted and accepts every active method.
func (s *Service) AvailableToStore(ctx context.Context, storeID uuid.UUID) ([]models.PaymentMethod, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	base, err := s.repo.Active(ctx)
	if err != nil {
		return nil, err
	}
	return s.filterByStore(ctx, storeID, base)
}

// StorefrontMethods lists what a shopper can pick: active, user-visible,
// optionally scoped to a store.
func (s *Service) StorefrontMethods(ctx context.Context, storeID uuid.UUID) ([]models.PaymentMethod, error) {
	base, err := s.repo.AvailableToUsers(ctx)
	if err != nil {
		return nil, err
	}
	if storeID == uuid.Nil {
		return base, nil
	}
	return s.filterByStore(ctx, storeID, base)
}

// Available is the legacy display_on query.
//
// Deprecated: compose StorefrontMethods / AvailableToAdmin instead.
func (s *Service) Available(ctx context.Context, displayTarget string, storeID uuid.UUID) ([]models.PaymentMethod, error) {
	s.logg.Deprecation(ctx, "registry.Available", "AvailableToUsers / AvailableToAdmin")
	target, err := enums.ParseDisplayTarget(displayTarget)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	wantUsers, wantAdmin := target.Flags()

	base, err := s.repo.Active(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.PaymentMethod, 0, len(base))
	for _, m := range base {
		if wantUsers && !m.AvailableToUsers {
			continue
		}
		if wantAdmin && !m.AvailableToAdmin {
			continue
		}
		filtered = append(filtered, m)
	}
	if storeID == uuid.Nil {
		return filtered, nil
	}
	return s.filterByStore(ctx, storeID, filtered)
}

func (s *Service) HasActiveVariant(ctx context.Context, variant enums.Variant) (bool, error) {
	if !variant.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown variant %q", variant))
	}
	return s.repo.HasActiveVariant(ctx, variant)
}

// AutoCapture resolves the record-level override, falling back to the
// registry-wide default.
func (s *Service) AutoCapture(method *models.PaymentMethod) bool {
	return method.ResolveAutoCapture(s.payments.AutoCaptureDefault)
}

// AutoCaptureDefault is the registry-wide fallback for records without an
// explicit auto_capture override.
func (s *Service) AutoCaptureDefault() bool {
	return s.payments.AutoCaptureDefault
}

// Currency is the ISO code gateway amounts are denominated in.
func (s *Service) Currency() string {
	return s.payments.Currency
}

// RecordPayment persists one dispatch outcome.
func (s *Service) RecordPayment(ctx context.Context, payment *models.Payment) error {
	return s.repo.CreatePayment(ctx, payment)
}

// FindSource loads one vaulted source.
func (s *Service) FindSource(ctx context.Context, id uuid.UUID) (*models.PaymentSource, error) {
	source, err := s.repo.FindSource(ctx, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment source not found")
	}
	return source, nil
}

// ListSources lists the vaulted sources for a method, optionally scoped to
// a store.
func (s *Service) ListSources(ctx context.Context, methodID, storeID uuid.UUID) ([]models.PaymentSource, error) {
	if _, err := s.mustFind(ctx, s.repo, methodID); err != nil {
		return nil, err
	}
	return s.repo.ListSources(ctx, methodID, storeID)
}

// CreateSource vaults a source reference for reuse.
func (s *Service) CreateSource(ctx context.Context, source *models.PaymentSource) error {
	if source.PaymentMethodID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}
	if !source.Kind.IsValid() || source.Kind == enums.SourceKindNone {
		return pkgerrors.New(pkgerrors.CodeValidation, "source kind is not storable")
	}
	if _, err := s.mustFind(ctx, s.repo, source.PaymentMethodID); err != nil {
		return err
	}
	return s.repo.CreateSource(ctx, source)
}

// filterByStore narrows base to the methods the store accepts. The store
// must exist; a store with no explicit associations is unrestricted.
func (s *Service) filterByStore(ctx context.Context, storeID uuid.UUID, base []models.PaymentMethod) ([]models.PaymentMethod, error) {
	store, err := s.repo.FindStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	ids, err := s.repo.MethodIDsForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return base, nil
	}
	allowed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	filtered := make([]models.PaymentMethod, 0, len(base))
	for _, m := range base {
		if allowed[m.ID] {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (s *Service) assignStores(ctx context.Context, repo Repository, method *models.PaymentMethod, storeIDs []uuid.UUID) error {
	if storeIDs == nil {
		return nil
	}
	stores := make([]models.Store, 0, len(storeIDs))
	for _, storeID := range storeIDs {
		store, err := repo.FindStore(ctx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown store %s", storeID))
		}
		stores = append(stores, *store)
	}
	return repo.ReplaceStores(ctx, method, stores)
}

func (s *Service) mustFind(ctx context.Context, repo Repository, id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	return method, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}
