package storecredit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Ledger applies store-credit movements. Every operation runs in one
// transaction so a hold and its balance change commit together. The hold ID
// is the transaction reference handed back to callers.
type Ledger struct {
	repo Repository
	tx   txRunner
}

func NewLedger(repo Repository, tx txRunner) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	return &Ledger{repo: repo, tx: tx}, nil
}

// Authorize places a hold against the store's available balance.
func (l *Ledger) Authorize(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (*models.StoreCreditHold, error) {
	var hold *models.StoreCreditHold
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		credit, err := l.creditForStore(ctx, repo, storeID)
		if err != nil {
			return err
		}
		if l.available(credit).LessThan(amount) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient store credit")
		}
		hold = &models.StoreCreditHold{
			ID:            uuid.New(),
			StoreCreditID: credit.ID,
			Amount:        amount,
			Status:        enums.PaymentStatusAuthorized,
		}
		if err := repo.CreateHold(ctx, hold); err != nil {
			return err
		}
		credit.AuthorizedAmount = credit.AuthorizedAmount.Add(amount)
		return repo.Save(ctx, credit)
	})
	if err != nil {
		return nil, err
	}
	return hold, nil
}

// Purchase deducts immediately, recording a captured hold for audit and refunds.
func (l *Ledger) Purchase(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (*models.StoreCreditHold, error) {
	var hold *models.StoreCreditHold
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		credit, err := l.creditForStore(ctx, repo, storeID)
		if err != nil {
			return err
		}
		if l.available(credit).LessThan(amount) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient store credit")
		}
		hold = &models.StoreCreditHold{
			ID:            uuid.New(),
			StoreCreditID: credit.ID,
			Amount:        amount,
			Status:        enums.PaymentStatusCaptured,
		}
		if err := repo.CreateHold(ctx, hold); err != nil {
			return err
		}
		credit.Balance = credit.Balance.Sub(amount)
		return repo.Save(ctx, credit)
	})
	if err != nil {
		return nil, err
	}
	return hold, nil
}

// Capture settles an authorized hold, deducting its amount from the balance.
func (l *Ledger) Capture(ctx context.Context, holdID uuid.UUID) (*models.StoreCreditHold, error) {
	return l.transition(ctx, holdID, enums.PaymentStatusAuthorized, enums.PaymentStatusCaptured,
		func(credit *models.StoreCredit, hold *models.StoreCreditHold) {
			credit.Balance = credit.Balance.Sub(hold.Amount)
			credit.AuthorizedAmount = credit.AuthorizedAmount.Sub(hold.Amount)
		})
}

// Void releases an authorized hold without touching the balance.
func (l *Ledger) Void(ctx context.Context, holdID uuid.UUID) (*models.StoreCreditHold, error) {
	return l.transition(ctx, holdID, enums.PaymentStatusAuthorized, enums.PaymentStatusVoided,
		func(credit *models.StoreCredit, hold *models.StoreCreditHold) {
			credit.AuthorizedAmount = credit.AuthorizedAmount.Sub(hold.Amount)
		})
}

// Credit refunds a captured hold back onto the balance. Partial refunds are
// allowed up to the captured amount.
func (l *Ledger) Credit(ctx context.Context, holdID uuid.UUID, amount decimal.Decimal) (*models.StoreCreditHold, error) {
	var result *models.StoreCreditHold
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		hold, credit, err := l.holdWithCredit(ctx, repo, holdID)
		if err != nil {
			return err
		}
		if hold.Status != enums.PaymentStatusCaptured {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only captured transactions can be refunded")
		}
		if amount.GreaterThan(hold.Amount) {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund exceeds captured amount")
		}
		hold.Amount = hold.Amount.Sub(amount)
		if hold.Amount.IsZero() {
			hold.Status = enums.PaymentStatusRefunded
		}
		if err := repo.SaveHold(ctx, hold); err != nil {
			return err
		}
		credit.Balance = credit.Balance.Add(amount)
		if err := repo.Save(ctx, credit); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel unwinds a hold whatever its stage: authorized holds are released,
// captured ones refunded in full.
func (l *Ledger) Cancel(ctx context.Context, holdID uuid.UUID) (*models.StoreCreditHold, error) {
	var result *models.StoreCreditHold
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		hold, credit, err := l.holdWithCredit(ctx, repo, holdID)
		if err != nil {
			return err
		}
		switch hold.Status {
		case enums.PaymentStatusAuthorized:
			credit.AuthorizedAmount = credit.AuthorizedAmount.Sub(hold.Amount)
			hold.Status = enums.PaymentStatusVoided
		case enums.PaymentStatusCaptured:
			credit.Balance = credit.Balance.Add(hold.Amount)
			hold.Amount = decimal.Zero
			hold.Status = enums.PaymentStatusRefunded
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"transaction is not in a state that allows this operation")
		}
		if err := repo.SaveHold(ctx, hold); err != nil {
			return err
		}
		if err := repo.Save(ctx, credit); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) transition(ctx context.Context, holdID uuid.UUID, from, to enums.PaymentStatus, apply func(*models.StoreCredit, *models.StoreCreditHold)) (*models.StoreCreditHold, error) {
	var result *models.StoreCreditHold
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		hold, credit, err := l.holdWithCredit(ctx, repo, holdID)
		if err != nil {
			return err
		}
		if hold.Status != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"transaction is not in a state that allows this operation")
		}
		apply(credit, hold)
		hold.Status = to
		if err := repo.SaveHold(ctx, hold); err != nil {
			return err
		}
		if err := repo.Save(ctx, credit); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) holdWithCredit(ctx context.Context, repo Repository, holdID uuid.UUID) (*models.StoreCreditHold, *models.StoreCredit, error) {
	hold, err := repo.FindHold(ctx, holdID)
	if err != nil {
		return nil, nil, err
	}
	if hold == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "store credit transaction not found")
	}
	credit, err := repo.FindByID(ctx, hold.StoreCreditID)
	if err != nil {
		return nil, nil, err
	}
	if credit == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "hold references a missing store credit balance")
	}
	return hold, credit, nil
}

func (l *Ledger) creditForStore(ctx context.Context, repo Repository, storeID uuid.UUID) (*models.StoreCredit, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required for store credit")
	}
	credit, err := repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no store credit balance for this store")
	}
	return credit, nil
}

func (l *Ledger) available(credit *models.StoreCredit) decimal.Decimal {
	return credit.Balance.Sub(credit.AuthorizedAmount)
}
