package storecredit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	credits map[uuid.UUID]*models.StoreCredit
	holds   map[uuid.UUID]*models.StoreCreditHold
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		credits: map[uuid.UUID]*models.StoreCredit{},
		holds:   map[uuid.UUID]*models.StoreCreditHold{},
	}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindByStore(ctx context.Context, storeID uuid.UUID) (*models.StoreCredit, error) {
	for _, credit := range r.credits {
		if credit.StoreID == storeID {
			return credit, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error) {
	return r.credits[id], nil
}

func (r *stubRepo) Save(ctx context.Context, credit *models.StoreCredit) error {
	r.credits[credit.ID] = credit
	return nil
}

func (r *stubRepo) CreateHold(ctx context.Context, hold *models.StoreCreditHold) error {
	r.holds[hold.ID] = hold
	return nil
}

func (r *stubRepo) FindHold(ctx context.Context, id uuid.UUID) (*models.StoreCreditHold, error) {
	return r.holds[id], nil
}

func (r *stubRepo) SaveHold(ctx context.Context, hold *models.StoreCreditHold) error {
	r.holds[hold.ID] = hold
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, *stubRepo, uuid.UUID) {
	t.Helper()
	repo := newStubRepo()
	storeID := uuid.New()
	credit := &models.StoreCredit{
		ID:       uuid.New(),
		StoreID:  storeID,
		Balance:  decimal.NewFromInt(100),
		Currency: "USD",
	}
	repo.credits[credit.ID] = credit

	ledger, err := NewLedger(repo, stubTx{})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger, repo, storeID
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func creditForStore(t *testing.T, repo *stubRepo, storeID uuid.UUID) *models.StoreCredit {
	t.Helper()
	credit, err := repo.FindByStore(context.Background(), storeID)
	if err != nil || credit == nil {
		t.Fatalf("credit lookup failed: %v", err)
	}
	return credit
}

func TestLedgerAuthorizeHoldsBalance(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if hold.Status != enums.PaymentStatusAuthorized {
		t.Fatalf("expected authorized hold, got %s", hold.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.AuthorizedAmount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40 authorized, got %s", credit.AuthorizedAmount)
	}
	if !credit.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("authorize must not touch balance, got %s", credit.Balance)
	}
}

func TestLedgerAuthorizeInsufficient(t *testing.T) {
	ledger, _, storeID := newTestLedger(t)

	if _, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(60)); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	_, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(50))
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestLedgerAuthorizeUnknownStore(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	_, err := ledger.Authorize(context.Background(), uuid.New(), decimal.NewFromInt(10))
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestLedgerCaptureSettlesHold(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	captured, err := ledger.Capture(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if captured.Status != enums.PaymentStatusCaptured {
		t.Fatalf("expected captured, got %s", captured.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected balance 60, got %s", credit.Balance)
	}
	if !credit.AuthorizedAmount.IsZero() {
		t.Fatalf("expected authorized 0, got %s", credit.AuthorizedAmount)
	}
}

func TestLedgerCaptureTwiceRejected(t *testing.T) {
	ledger, _, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if _, err := ledger.Capture(context.Background(), hold.ID); err != nil {
		t.Fatalf("capture: %v", err)
	}
	_, err = ledger.Capture(context.Background(), hold.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestLedgerVoidReleasesHold(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	voided, err := ledger.Void(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != enums.PaymentStatusVoided {
		t.Fatalf("expected voided, got %s", voided.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(100)) || !credit.AuthorizedAmount.IsZero() {
		t.Fatalf("expected full balance restored, got %s held %s", credit.Balance, credit.AuthorizedAmount)
	}
}

func TestLedgerPurchaseDeductsImmediately(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Purchase(context.Background(), storeID, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if hold.Status != enums.PaymentStatusCaptured {
		t.Fatalf("expected captured, got %s", hold.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70, got %s", credit.Balance)
	}
}

func TestLedgerCreditRefundsCapturedHold(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Purchase(context.Background(), storeID, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	refunded, err := ledger.Credit(context.Background(), hold.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if refunded.Status != enums.PaymentStatusCaptured {
		t.Fatalf("partial refund should stay captured, got %s", refunded.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected balance 80, got %s", credit.Balance)
	}

	full, err := ledger.Credit(context.Background(), hold.ID, decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if full.Status != enums.PaymentStatusRefunded {
		t.Fatalf("expected refunded after full credit, got %s", full.Status)
	}
}

func TestLedgerCreditOverRefundRejected(t *testing.T) {
	ledger, _, storeID := newTestLedger(t)

	hold, err := ledger.Purchase(context.Background(), storeID, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	_, err = ledger.Credit(context.Background(), hold.ID, decimal.NewFromInt(31))
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestLedgerCancelReleasesAuthorizedHold(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	cancelled, err := ledger.Cancel(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.PaymentStatusVoided {
		t.Fatalf("expected voided, got %s", cancelled.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(100)) || !credit.AuthorizedAmount.IsZero() {
		t.Fatalf("expected untouched balance, got %s held %s", credit.Balance, credit.AuthorizedAmount)
	}
}

func TestLedgerCancelRefundsCapturedHold(t *testing.T) {
	ledger, repo, storeID := newTestLedger(t)

	hold, err := ledger.Purchase(context.Background(), storeID, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	cancelled, err := ledger.Cancel(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", cancelled.Status)
	}

	credit := creditForStore(t, repo, storeID)
	if !credit.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance restored, got %s", credit.Balance)
	}
}

func TestLedgerCancelRejectedAfterVoid(t *testing.T) {
	ledger, _, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if _, err := ledger.Void(context.Background(), hold.ID); err != nil {
		t.Fatalf("void: %v", err)
	}
	_, err = ledger.Cancel(context.Background(), hold.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestLedgerCreditRequiresCapturedHold(t *testing.T) {
	ledger, _, storeID := newTestLedger(t)

	hold, err := ledger.Authorize(context.Background(), storeID, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	_, err = ledger.Credit(context.Background(), hold.ID, decimal.NewFromInt(10))
	expectCode(t, err, pkgerrors.CodeStateConflict)
}
