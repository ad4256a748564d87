package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
)

func setupRegistryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  default_store INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payment_methods (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  variant TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  available_to_users INTEGER NOT NULL DEFAULT 1,
  available_to_admin INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL,
  auto_capture INTEGER,
  preferences TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS store_payment_methods (
  store_id TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  PRIMARY KEY (store_id, payment_method_id)
);`, `
CREATE TABLE IF NOT EXISTS payment_sources (
  id TEXT PRIMARY KEY,
  payment_method_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  gateway_source_id TEXT UNIQUE,
  brand TEXT,
  last4 TEXT,
  exp_month INTEGER,
  exp_year INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  payment_method_id TEXT NOT NULL,
  store_id TEXT,
  source_id TEXT,
  operation TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL,
  status TEXT NOT NULL,
  gateway_message TEXT,
  transaction_ref TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`}

	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedMethod(t *testing.T, repo Repository, name string, variant enums.Variant, position int, active, users, admin bool) *models.PaymentMethod {
	t.Helper()
	method := &models.PaymentMethod{
		ID:               uuid.New(),
		Name:             name,
		Variant:          variant,
		Active:           active,
		AvailableToUsers: users,
		AvailableToAdmin: admin,
		Position:         position,
	}
	require.NoError(t, repo.Create(context.Background(), method))
	return method
}

func TestRepositoryOrderedByPosition(t *testing.T) {
	repo := NewRepository(setupRegistryTestDB(t))
	ctx := context.Background()

	seedMethod(t, repo, "check", enums.VariantCheck, 3, true, true, true)
	seedMethod(t, repo, "card", enums.VariantCreditCard, 1, true, true, true)
	seedMethod(t, repo, "credit", enums.VariantStoreCredit, 2, true, true, true)

	methods, err := repo.OrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 3)
	assert.Equal(t, "card", methods[0].Name)
	assert.Equal(t, "credit", methods[1].Name)
	assert.Equal(t, "check", methods[2].Name)
}

func TestRepositoryAvailabilityFilters(t *testing.T) {
	repo := NewRepository(setupRegistryTestDB(t))
	ctx := context.Background()

	seedMethod(t, repo, "everywhere", enums.VariantCreditCard, 1, true, true, true)
	seedMethod(t, repo, "admin-only", enums.VariantCheck, 2, true, false, true)
	seedMethod(t, repo, "users-only", enums.VariantStoreCredit, 3, true, true, false)
	seedMethod(t, repo, "inactive", enums.VariantCreditCard, 4, false, true, true)

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	users, err := repo.AvailableToUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "everywhere", users[0].Name)
	assert.Equal(t, "users-only", users[1].Name)

	admin, err := repo.AvailableToAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, admin, 2)
	assert.Equal(t, "everywhere", admin[0].Name)
	assert.Equal(t, "admin-only", admin[1].Name)
}

func TestRepositorySoftDeleteHidesRecord(t *testing.T) {
	repo := NewRepository(setupRegistryTestDB(t))
	ctx := context.Background()

	method := seedMethod(t, repo, "card", enums.VariantCreditCard, 1, true, true, true)
	require.NoError(t, repo.SoftDelete(ctx, method.ID))

	found, err := repo.FindByID(ctx, method.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	methods, err := repo.OrderedByPosition(ctx)
	require.NoError(t, err)
	assert.Empty(t, methods)

	deleted, err := repo.FindIncludingDeleted(ctx, method.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.True(t, deleted.DeletedAt.Valid)
}

func TestRepositoryHasActiveVariant(t *testing.T) {
	repo := NewRepository(setupRegistryTestDB(t))
	ctx := context.Background()

	seedMethod(t, repo, "card", enums.VariantCreditCard, 1, true, true, true)
	seedMethod(t, repo, "check", enums.VariantCheck, 2, false, true, true)

	hasCard, err := repo.HasActiveVariant(ctx, enums.VariantCreditCard)
	require.NoError(t, err)
	assert.True(t, hasCard)

	hasCheck, err := repo.HasActiveVariant(ctx, enums.VariantCheck)
	require.NoError(t, err)
	assert.False(t, hasCheck)
}

func TestRepositoryMaxPositionAndUpdate(t *testing.T) {
	repo := NewRepository(setupRegistryTestDB(t))
	ctx := context.Background()

	max, err := repo.MaxPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	method := seedMethod(t, repo, "card", enums.VariantCreditCard, 5, true, true, true)

	max, err = repo.MaxPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, max)

	require.NoError(t, repo.UpdatePosition(ctx, method.ID, 2))
	found, err := repo.FindByID(ctx, method.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Position)
}

func TestRepositoryStoreAssociations(t *testing.T) {
	db := setupRegistryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := &models.Store{ID: uuid.New(), Name: "North", Code: "north"}
	require.NoError(t, db.Create(store).Error)

	method := seedMethod(t, repo, "card", enums.VariantCreditCard, 1, true, true, true)

	ids, err := repo.MethodIDsForStore(ctx, store.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.ReplaceStores(ctx, method, []models.Store{*store}))

	ids, err = repo.MethodIDsForStore(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, method.ID, ids[0])
}

func TestRepositorySources(t *testing.T) {
	db := setupRegistryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := &models.Store{ID: uuid.New(), Name: "North", Code: "north"}
	require.NoError(t, db.Create(store).Error)
	method := seedMethod(t, repo, "card", enums.VariantCreditCard, 1, true, true, true)

	token := "ccof:abc123"
	source := &models.PaymentSource{
		ID:              uuid.New(),
		PaymentMethodID: method.ID,
		StoreID:         store.ID,
		Kind:            enums.SourceKindCard,
		GatewaySourceID: &token,
	}
	require.NoError(t, repo.CreateSource(ctx, source))

	found, err := repo.FindSource(ctx, source.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.SourceKindCard, found.Kind)

	listed, err := repo.ListSources(ctx, method.ID, store.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	other, err := repo.ListSources(ctx, method.ID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
