package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/retail-backend/api/controllers"
	"github.com/angelmondragon/retail-backend/api/middleware"
	customer "github.com/angelmondragon/retail-backend/internal/customers"
	product "github.com/angelmondragon/retail-backend/internal/products"
	sale "github.com/angelmondragon/retail-backend/internal/sales"
	"github.com/angelmondragon/retail-backend/pkg/config"
	"github.com/angelmondragon/retail-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/retail-backend/pkg/redis"
)

// Services groups the domain services the API exposes.
type Services struct {
	Products  product.Service
	Sales     sale.Service
	Customers customer.Service
}

// Deps carries the infrastructure handles the router needs. Idempotency, Redis and
// Registry may be nil; the matching features are then disabled.
type Deps struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Registry    *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if cfg.Metrics.Enabled && deps.Registry != nil {
		r.Method(http.MethodGet, metricsPath(cfg), promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Idempotency, logg, cfg.FeatureFlags.IdempotencyTTL))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Products, logg))
			r.Post("/", controllers.CreateProduct(svc.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svc.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(svc.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(svc.Products, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svc.Sales, logg))
			r.Post("/", controllers.CreateSale(svc.Sales, logg))
			r.Get("/{saleId}", controllers.GetSale(svc.Sales, logg))
			r.Put("/{saleId}", controllers.UpdateSale(svc.Sales, logg))
			r.Delete("/{saleId}", controllers.DeleteSale(svc.Sales, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(svc.Customers, logg))
			r.Post("/", controllers.CreateCustomer(svc.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svc.Customers, logg))
		})
	})

	return r
}

func metricsPath(cfg *config.Config) string {
	if cfg.Metrics.Path == "" {
		return "/metrics"
	}
	return cfg.Metrics.Path
}
