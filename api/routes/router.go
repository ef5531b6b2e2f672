package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arkicoffee/storefront-backend/api/controllers"
	cartcontrollers "github.com/arkicoffee/storefront-backend/api/controllers/cart"
	"github.com/arkicoffee/storefront-backend/api/middleware"
	"github.com/arkicoffee/storefront-backend/internal/auth"
	"github.com/arkicoffee/storefront-backend/internal/blog"
	cartsvc "github.com/arkicoffee/storefront-backend/internal/cart"
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	checkoutsvc "github.com/arkicoffee/storefront-backend/internal/checkout"
	"github.com/arkicoffee/storefront-backend/pkg/config"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/metrics"
	"github.com/arkicoffee/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        redis.Pinger
	Catalog      *catalog.Repository
	Blog         *blog.Repository
	CartRegistry *cartsvc.Registry
	Policy       cartsvc.Policy
	Auth         *auth.Service
	Checkout     *checkoutsvc.Service
	Metrics      *metrics.StorefrontMetrics
	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Redis))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/{slug}", controllers.ProductDetail(deps.Catalog, logg))
		})
		r.Get("/collections", controllers.CollectionList(deps.Catalog, logg))

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", controllers.BlogList(deps.Blog, logg))
			r.Get("/{slug}", controllers.BlogDetail(deps.Blog, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", controllers.AuthSignup(deps.Auth, logg))
			r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(logg))
			r.Get("/me", controllers.AuthMe(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(deps.CartRegistry, deps.Policy, logg))
				r.Delete("/", cartcontrollers.CartClear(deps.CartRegistry, deps.Policy, logg, deps.Metrics))
				r.Post("/items", cartcontrollers.CartAddItem(deps.CartRegistry, deps.Catalog, deps.Policy, logg, deps.Metrics))
				r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(deps.CartRegistry, deps.Policy, logg, deps.Metrics))
				r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(deps.CartRegistry, deps.Policy, logg, deps.Metrics))
			})

			r.Post("/checkout", controllers.Checkout(deps.Checkout, deps.CartRegistry, logg, deps.Metrics))
		})
	})

	return r
}
