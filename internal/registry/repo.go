package registry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
)

// Repository handles payment method registry persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, method *models.PaymentMethod) error
	Save(ctx context.Context, method *models.PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	FindIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	OrderedByPosition(ctx context.Context) ([]models.PaymentMethod, error)
	Active(ctx context.Context) ([]models.PaymentMethod, error)
	AvailableToUsers(ctx context.Context) ([]models.PaymentMethod, error)
	AvailableToAdmin(ctx context.Context) ([]models.PaymentMethod, error)
	MethodIDsForStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error)
	HasActiveVariant(ctx context.Context, variant enums.Variant) (bool, error)
	MaxPosition(ctx context.Context) (int, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, position int) error
	FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ReplaceStores(ctx context.Context, method *models.PaymentMethod, stores []models.Store) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateSource(ctx context.Context, source *models.PaymentSource) error
	FindSource(ctx context.Context, id uuid.UUID) (*models.PaymentSource, error)
	ListSources(ctx context.Context, methodID, storeID uuid.UUID) ([]models.PaymentSource, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a registry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(method).Error
}

func (r *repository) Save(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&method).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// FindIncludingDeleted looks a record up even after soft deletion.
func (r *repository) FindIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		First(&method).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PaymentMethod{}).Error
}

func (r *repository) OrderedByPosition(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *repository) Active(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("active = ?", true))
}

func (r *repository) AvailableToUsers(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("active = ? AND available_to_users = ?", true, true))
}

func (r *repository) AvailableToAdmin(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("active = ? AND available_to_admin = ?", true, true))
}

func (r *repository) list(ctx context.Context, query *gorm.DB) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := query.Order("position ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// MethodIDsForStore returns the store's explicit associations. An empty
// result means the store is unrestricted, not that it accepts nothing.
func (r *repository) MethodIDsForStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Table("store_payment_methods").
		Where("store_id = ?", storeID).
		Pluck("payment_method_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) HasActiveVariant(ctx context.Context, variant enums.Variant) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("variant = ? AND active = ?", variant, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) MaxPosition(ctx context.Context) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpdatePosition writes one record's position without touching timestamps
// beyond updated_at. Reordering moves rows one at a time, each into a slot
// the previous move freed, so the live-position unique index never sees a
// duplicate.
func (r *repository) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("id = ?", id).
		Update("position", position).Error
}

func (r *repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repository) ReplaceStores(ctx context.Context, method *models.PaymentMethod, stores []models.Store) error {
	return r.db.WithContext(ctx).
		Model(method).
		Association("Stores").
		Replace(stores)
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) CreateSource(ctx context.Context, source *models.PaymentSource) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *repository) FindSource(ctx context.Context, id uuid.UUID) (*models.PaymentSource, error) {
	var source models.PaymentSource
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&source).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (r *repository) ListSources(ctx context.Context, methodID, storeID uuid.UUID) ([]models.PaymentSource, error) {
	query := r.db.WithContext(ctx).Where("payment_method_id = ?", methodID)
	if storeID != uuid.Nil {
		query = query.Where("store_id = ?", storeID)
	}
	var sources []models.PaymentSource
	if err := query.Order("created_at DESC").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}
