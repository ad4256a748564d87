package storecredit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
)

// Repository handles store-credit persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByStore(ctx context.Context, storeID uuid.UUID) (*models.StoreCredit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error)
	Save(ctx context.Context, credit *models.StoreCredit) error
	CreateHold(ctx context.Context, hold *models.StoreCreditHold) error
	FindHold(ctx context.Context, id uuid.UUID) (*models.StoreCreditHold, error)
	SaveHold(ctx context.Context, hold *models.StoreCreditHold) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a store-credit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByStore(ctx context.Context, storeID uuid.UUID) (*models.StoreCredit, error) {
	var credit models.StoreCredit
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&credit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error) {
	var credit models.StoreCredit
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&credit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

func (r *repository) Save(ctx context.Context, credit *models.StoreCredit) error {
	return r.db.WithContext(ctx).Save(credit).Error
}

func (r *repository) CreateHold(ctx context.Context, hold *models.StoreCreditHold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *repository) FindHold(ctx context.Context, id uuid.UUID) (*models.StoreCreditHold, error) {
	var hold models.StoreCreditHold
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&hold).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) SaveHold(ctx context.Context, hold *models.StoreCreditHold) error {
	return r.db.WithContext(ctx).Save(hold).Error
}
