package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/pkg/config"
	"github.com/harborpay/harborpay-backend/pkg/db/models"
	"github.com/harborpay/harborpay-backend/pkg/enums"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	"github.com/harborpay/harborpay-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRegistryRepo struct{}

func (r stubRegistryRepo) WithTx(tx *gorm.DB) registry.Repository { return r }

func (stubRegistryRepo) Create(ctx context.Context, method *models.PaymentMethod) error {
	return nil
}

func (stubRegistryRepo) Save(ctx context.Context, method *models.PaymentMethod) error {
	return nil
}

func (stubRegistryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) FindIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubRegistryRepo) OrderedByPosition(ctx context.Context) ([]models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) Active(ctx context.Context) ([]models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) AvailableToUsers(ctx context.Context) ([]models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) AvailableToAdmin(ctx context.Context) ([]models.PaymentMethod, error) {
	return nil, nil
}

func (stubRegistryRepo) MethodIDsForStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (stubRegistryRepo) HasActiveVariant(ctx context.Context, variant enums.Variant) (bool, error) {
	return false, nil
}

func (stubRegistryRepo) MaxPosition(ctx context.Context) (int, error) {
	return 0, nil
}

func (stubRegistryRepo) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	return nil
}

func (stubRegistryRepo) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return nil, nil
}

func (stubRegistryRepo) ReplaceStores(ctx context.Context, method *models.PaymentMethod, stores []models.Store) error {
	return nil
}

func (stubRegistryRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return nil
}

func (stubRegistryRepo) CreateSource(ctx context.Context, source *models.PaymentSource) error {
	return nil
}

func (stubRegistryRepo) FindSource(ctx context.Context, id uuid.UUID) (*models.PaymentSource, error) {
	return nil, nil
}

func (stubRegistryRepo) ListSources(ctx context.Context, methodID, storeID uuid.UUID) ([]models.PaymentSource, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "test", Port: "0"},
		Payments: config.PaymentsConfig{Currency: "USD"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	svc, err := registry.NewService(registry.ServiceParams{
		Repo:     stubRegistryRepo{},
		Tx:       stubTx{},
		Logger:   logg,
		Payments: cfg.Payments,
	})
	if err != nil {
		t.Fatalf("build registry service: %v", err)
	}

	factory := gateway.NewFactory(gateway.DefaultTable(nil, nil))
	dispatcher := gateway.NewDispatcher(factory, metrics.NewDispatchMetrics(nil), logg)

	return NewRouter(Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         stubPinger{},
		Registry:   svc,
		Dispatcher: dispatcher,
	})
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-HarborPay-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-HarborPay-Env"))
	}
}

func TestHealthReadyReportsDependencies(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 when all dependencies ping got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "postgres") {
		t.Fatalf("expected postgres status in body, got %s", resp.Body.String())
	}
}

func TestStorefrontListServesEmptyRegistry(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDispatchRejectsMalformedMethodID(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/not-a-uuid/authorize", strings.NewReader(`{"amount":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id got %d", resp.Code)
	}
}

func TestDispatchUnknownMethodReturnsNotFound(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/authorize", strings.NewReader(`{"amount":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown method got %d", resp.Code)
	}
}

func TestAdminCreateRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/payment-methods/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestAdminListServesEmptyRegistry(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/payment-methods/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSourceCreateVaultingUnknownMethod(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := fmt.Sprintf(`{"store_id":%q,"kind":"card","card_token":"cnon:token"}`, uuid.NewString())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-methods/"+uuid.NewString()+"/sources", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown method got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminDeleteUnknownMethodNotFound(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/payment-methods/"+uuid.NewString(), nil)
	req.Header.Set("Idempotency-Key", "delete-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown method got %d: %s", resp.Code, resp.Body.String())
	}
}
