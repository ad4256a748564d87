package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborpay/harborpay-backend/api/controllers"
	"github.com/harborpay/harborpay-backend/api/middleware"
	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/pkg/config"
	"github.com/harborpay/harborpay-backend/pkg/db"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	pkgredis "github.com/harborpay/harborpay-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *pkgredis.Client
	Registry   *registry.Service
	Dispatcher *gateway.Dispatcher
	Gatherer   prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, readinessDeps(deps)))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/payment-methods", controllers.PaymentMethodList(deps.Registry, deps.Logger))
		r.Get("/payment-methods/{methodID}/sources", controllers.PaymentMethodSources(deps.Registry, deps.Logger))
		r.Post("/payment-methods/{methodID}/sources", controllers.PaymentMethodSourceCreate(deps.Registry, deps.Dispatcher, deps.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStore, deps.Logger))
			r.Post("/payments/{methodID}/{op}", controllers.Dispatch(deps.Registry, deps.Dispatcher, deps.Logger))
		})
	})

	r.Route("/api/admin/v1/payment-methods", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, deps.Logger))
		r.Post("/", controllers.AdminPaymentMethodCreate(deps.Registry, deps.Logger))
		r.Get("/", controllers.AdminPaymentMethodList(deps.Registry, deps.Logger))
		r.Get("/{id}", controllers.AdminPaymentMethodGet(deps.Registry, deps.Logger))
		r.Patch("/{id}", controllers.AdminPaymentMethodUpdate(deps.Registry, deps.Logger))
		r.Put("/{id}/preferences", controllers.AdminPaymentMethodUpdatePreferences(deps.Registry, deps.Logger))
		r.Delete("/{id}", controllers.AdminPaymentMethodDelete(deps.Registry, deps.Dispatcher, deps.Logger))
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	targets := map[string]controllers.Pinger{}
	if deps.DB != nil {
		targets["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		targets["redis"] = deps.Redis
	}
	return targets
}
