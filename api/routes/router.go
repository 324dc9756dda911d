package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bazaarlabs/bazaar-backend/api/controllers"
	"github.com/bazaarlabs/bazaar-backend/api/middleware"
	analyticsvc "github.com/bazaarlabs/bazaar-backend/internal/analytics"
	cartsvc "github.com/bazaarlabs/bazaar-backend/internal/cart"
	checkoutsvc "github.com/bazaarlabs/bazaar-backend/internal/checkout"
	ordersvc "github.com/bazaarlabs/bazaar-backend/internal/orders"
	productsvc "github.com/bazaarlabs/bazaar-backend/internal/products"
	usersvc "github.com/bazaarlabs/bazaar-backend/internal/users"
	"github.com/bazaarlabs/bazaar-backend/pkg/config"
	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
	"github.com/bazaarlabs/bazaar-backend/pkg/metrics"
	"github.com/bazaarlabs/bazaar-backend/pkg/redis"
)

// Deps bundles everything the router needs. All service fields are required;
// Registry and HTTPMetrics may be nil to disable the /metrics surface.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Users     usersvc.Service
	Products  productsvc.Service
	Cart      cartsvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
	Analytics analyticsvc.Service
}

// NewRouter wires the HTTP surface. Paths keep their trailing slash so the
// web client can call them without redirects.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

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

	var cachePinger controllers.Pinger
	if deps.Redis != nil {
		cachePinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, cachePinger, logg))
	})
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register/", controllers.Register(deps.Users, logg))
		r.Post("/activate/", controllers.Activate(deps.Users, logg))
		r.Post("/resend-activation/", controllers.ResendActivation(deps.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login/", controllers.Login(deps.Users, logg))
		r.Post("/password-reset/", controllers.PasswordResetRequest(deps.Users, logg))
		r.Post("/password-reset/confirm/", controllers.PasswordResetConfirm(deps.Users, logg))
	})

	r.Get("/products/", controllers.ListProducts(deps.Products, logg))
	r.Get("/products/{id}/", controllers.GetProduct(deps.Products, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/auth/change-password/", controllers.ChangePassword(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(deps.Cart, logg))
			r.Post("/", controllers.CartAddOne(deps.Cart, logg))
			r.Post("/sync/", controllers.CartSync(deps.Cart, logg))
			r.Get("/count/", controllers.CartCount(deps.Cart, logg))
			r.Put("/item/{id}/update/", controllers.CartItemUpdate(deps.Cart, logg))
			r.Delete("/item/{id}/", controllers.CartItemDelete(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.MyOrders(deps.Orders, logg))
			r.Post("/create/", controllers.OrderCreate(deps.Checkout, logg))
			r.Get("/{id}/", controllers.MyOrder(deps.Orders, logg))
		})

		r.Route("/seller/orders", func(r chi.Router) {
			r.Use(middleware.RequireSeller(logg))
			r.Get("/", controllers.SellerOrders(deps.Orders, logg))
			r.Put("/{id}/status/", controllers.SellerOrderStatus(deps.Orders, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/orders/", controllers.AdminOrders(deps.Orders, logg))
			r.Put("/orders/{id}/status/", controllers.AdminOrderStatus(deps.Orders, logg))
			r.Get("/users/", controllers.AdminUsers(deps.Users, logg))
			r.Put("/users/{id}/toggle/", controllers.AdminUserToggle(deps.Users, logg))
			r.Get("/analytics/", controllers.AdminAnalytics(deps.Analytics, logg))
		})
	})

	return r
}
