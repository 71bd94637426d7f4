package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajidhasan/farmcart-backend/api/controllers"
	"github.com/sajidhasan/farmcart-backend/api/middleware"
	"github.com/sajidhasan/farmcart-backend/internal/catalog"
	"github.com/sajidhasan/farmcart-backend/internal/customers"
	"github.com/sajidhasan/farmcart-backend/internal/inventory"
	"github.com/sajidhasan/farmcart-backend/internal/notifications"
	"github.com/sajidhasan/farmcart-backend/internal/orders"
	"github.com/sajidhasan/farmcart-backend/internal/payments"
	"github.com/sajidhasan/farmcart-backend/internal/subscriptions"
	"github.com/sajidhasan/farmcart-backend/internal/wallet"
	"github.com/sajidhasan/farmcart-backend/pkg/auth/session"
	"github.com/sajidhasan/farmcart-backend/pkg/config"
	"github.com/sajidhasan/farmcart-backend/pkg/db"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
	pkgredis "github.com/sajidhasan/farmcart-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, refreshToken string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Services bundles everything the router mounts.
type Services struct {
	Customers     customers.Service
	Catalog       catalog.Service
	Inventory     inventory.Service
	Wallet        wallet.Service
	Orders        orders.Service
	Payments      payments.Service
	Subscriptions subscriptions.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	authenticate := middleware.Auth(cfg.JWT, sessions, logg)
	idempotency := middleware.Idempotency(redisClient, logg)

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
		r.Get("/ready", controllers.HealthReady(logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Customers, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), idempotency).Post("/register", controllers.AuthRegister(svcs.Customers, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.With(authenticate).Get("/me", controllers.AuthMe(svcs.Customers, logg))
	})

	// Catalog reads are public. Browsing needs no account. Stock
	// administration shares the subtree behind auth and the admin role.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.CatalogProducts(svcs.Catalog, logg))
		r.Get("/{productID}", controllers.CatalogProduct(svcs.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticate, idempotency, middleware.RequireRole("admin", logg))
			r.Get("/low-stock", controllers.LowStockProducts(svcs.Inventory, logg))
			r.Post("/{productID}/restock", controllers.ProductRestock(svcs.Inventory, logg))
			r.Get("/{productID}/movements", controllers.ProductMovements(svcs.Inventory, logg))
		})
	})
	r.Get("/api/v1/categories", controllers.CatalogCategories(svcs.Catalog, logg))
	r.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", controllers.CatalogPlans(svcs.Catalog, logg))
		r.Get("/{planID}", controllers.CatalogPlan(svcs.Catalog, logg))
	})

	// Gateway callbacks arrive unauthenticated. The payments service
	// validates every settlement against SSLCommerz before trusting it.
	r.Route("/api/v1/webhooks/sslcommerz", func(r chi.Router) {
		r.Post("/success", controllers.SSLCommerzSuccess(svcs.Payments, logg))
		r.Post("/fail", controllers.SSLCommerzFail(svcs.Payments, logg))
		r.Post("/cancel", controllers.SSLCommerzFail(svcs.Payments, logg))
		r.Post("/ipn", controllers.SSLCommerzIPN(svcs.Payments, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authenticate, idempotency)
		r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
		r.Get("/", controllers.OrderList(svcs.Orders, logg))
		r.Get("/{orderID}", controllers.OrderDetail(svcs.Orders, logg))
		r.Get("/{orderID}/tracking", controllers.OrderTracking(svcs.Orders, logg))
		r.Post("/{orderID}/payments", controllers.PaymentDispatch(svcs.Orders, svcs.Payments, logg))
		r.Get("/{orderID}/payments", controllers.PaymentList(svcs.Orders, svcs.Payments, logg))
		r.With(middleware.RequireRole("admin", logg)).Patch("/{orderID}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
	})

	r.Route("/api/v1/wallet", func(r chi.Router) {
		r.Use(authenticate, idempotency)
		r.Get("/", controllers.WalletGet(svcs.Wallet, logg))
		r.Post("/deposit", controllers.WalletDeposit(svcs.Wallet, logg))
		r.Get("/transactions", controllers.WalletTransactions(svcs.Wallet, logg))
	})

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(authenticate, idempotency)
		r.Post("/", controllers.SubscriptionCreate(svcs.Subscriptions, logg))
		r.Get("/", controllers.SubscriptionList(svcs.Subscriptions, logg))
		r.Get("/{subscriptionID}", controllers.SubscriptionDetail(svcs.Subscriptions, logg))
		r.Post("/{subscriptionID}/cancel", controllers.SubscriptionCancel(svcs.Subscriptions, logg))
		r.Post("/{subscriptionID}/pause", controllers.SubscriptionPause(svcs.Subscriptions, logg))
		r.Post("/{subscriptionID}/resume", controllers.SubscriptionResume(svcs.Subscriptions, logg))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(authenticate, idempotency)
		r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
		r.Post("/{notificationID}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
		r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
		r.Get("/unread-count", controllers.NotificationUnreadCount(svcs.Notifications, logg))
	})

	return r
}
