package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brewhaven/brewhaven-backend/api/controllers"
	"github.com/brewhaven/brewhaven-backend/api/middleware"
	"github.com/brewhaven/brewhaven-backend/internal/cart"
	"github.com/brewhaven/brewhaven-backend/internal/catalog"
	"github.com/brewhaven/brewhaven-backend/internal/chat"
	checkoutsvc "github.com/brewhaven/brewhaven-backend/internal/checkout"
	"github.com/brewhaven/brewhaven-backend/internal/identity"
	"github.com/brewhaven/brewhaven-backend/internal/inventory"
	"github.com/brewhaven/brewhaven-backend/internal/orders"
	"github.com/brewhaven/brewhaven-backend/pkg/auth/session"
	"github.com/brewhaven/brewhaven-backend/pkg/config"
	"github.com/brewhaven/brewhaven-backend/pkg/db"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
	"github.com/brewhaven/brewhaven-backend/pkg/redis"
)

// Deps bundles everything the router needs. Metrics is optional; when nil the
// /metrics endpoint serves the default registry.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        db.Pinger
	RedisClient     *redis.Client
	SessionChecker  session.AccessSessionChecker
	IdentityService identity.Service
	CatalogService  catalog.Service
	InventorySvc    inventory.Service
	CartStore       *cart.Store
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
	ChatService     chat.Service
	MetricsHandler  http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisClient))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Storefront browsing needs no account.
	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/coffees", controllers.CoffeeList(deps.CatalogService, logg))
		r.Get("/coffees/{coffeeId}", controllers.CoffeeDetail(deps.CatalogService, logg))
		r.Get("/categories", controllers.CategoryList(deps.CatalogService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RedisClient, logg)).
			Post("/register", controllers.AuthRegister(deps.IdentityService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.IdentityService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.IdentityService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(deps.IdentityService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/me", controllers.ProfileMe(deps.IdentityService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartStore, logg))
			r.Post("/items", controllers.CartAdd(deps.CartStore, deps.CatalogService, logg))
			r.Put("/items/{coffeeId}", controllers.CartUpdateItem(deps.CartStore, logg))
			r.Delete("/items/{coffeeId}", controllers.CartRemoveItem(deps.CartStore, logg))
			r.Delete("/", controllers.CartClear(deps.CartStore, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.CheckoutService, deps.CartStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", controllers.ChatSend(deps.ChatService, logg))
			r.Get("/history", controllers.ChatHistory(deps.ChatService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/stats", controllers.AdminStats(deps.IdentityService, deps.OrdersService, deps.ChatService, logg))

		r.Route("/coffees", func(r chi.Router) {
			r.Post("/", controllers.AdminCoffeeCreate(deps.CatalogService, logg))
			r.Patch("/{coffeeId}", controllers.AdminCoffeeUpdate(deps.CatalogService, logg))
			r.Delete("/{coffeeId}", controllers.AdminCoffeeDelete(deps.CatalogService, logg))
			r.Post("/{coffeeId}/restock", controllers.AdminCoffeeRestock(deps.InventorySvc, logg))
		})

		r.Post("/categories", controllers.AdminCategoryCreate(deps.CatalogService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.OrdersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderSetStatus(deps.OrdersService, logg))
		})
	})

	return r
}
