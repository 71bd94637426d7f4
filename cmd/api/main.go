package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/api/routes"
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
	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
	"github.com/sajidhasan/farmcart-backend/pkg/metrics"
	"github.com/sajidhasan/farmcart-backend/pkg/migrate"
	"github.com/sajidhasan/farmcart-backend/pkg/redis"
	"github.com/sajidhasan/farmcart-backend/pkg/sslcommerz"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
) (routes.Services, error) {
	gormDB := dbClient.DB()
	customersRepo := customers.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	subscriptionsRepo := subscriptions.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:      notificationsRepo,
		Publisher: redisClient,
		Logger:    logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	walletService, err := wallet.NewService(dbClient, walletRepo)
	if err != nil {
		return routes.Services{}, err
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}

	inventoryService, err := inventory.NewService(inventoryRepo)
	if err != nil {
		return routes.Services{}, err
	}

	customersService, err := customers.NewService(customers.ServiceParams{
		TxRunner: dbClient,
		Repo:     customersRepo,
		WalletFactory: func(tx *gorm.DB) interface {
			Create(ctx context.Context, wallet *models.Wallet) error
		} {
			return walletRepo.WithTx(tx)
		},
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		TxRunner:     dbClient,
		Repo:         subscriptionsRepo,
		Plans:        catalogRepo,
		Wallet:       walletService,
		OrdersRepo:   ordersRepo,
		PaymentsRepo: paymentsRepo,
		Notifier:     notificationsService,
		Logger:       logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	var gw *sslcommerz.Client
	if cfg.SSLCommerz.HasCredentials() {
		gw, err = sslcommerz.NewClient(context.Background(), cfg.SSLCommerz, logg)
		if err != nil {
			return routes.Services{}, err
		}
	} else {
		logg.Warn(context.Background(), "sslcommerz credentials not configured, gateway payments disabled")
	}

	paymentsParams := payments.ServiceParams{
		TxRunner:      dbClient,
		Repo:          paymentsRepo,
		Orders:        ordersRepo,
		Customers:     customersRepo,
		Wallet:        walletService,
		Inventory:     inventoryService,
		Notifier:      notificationsService,
		Metrics:       metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		AppBaseURL:    cfg.App.BaseURL,
		GatewayConfig: cfg.SSLCommerz,
	}
	if gw != nil {
		paymentsParams.Gateway = gw
	}
	paymentsService, err := payments.NewService(paymentsParams)
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		TxRunner:      dbClient,
		Repo:          ordersRepo,
		Products:      catalogRepo,
		Inventory:     inventoryService,
		Wallet:        walletService,
		Payments:      paymentsService,
		Subscriptions: subscriptionsService,
		Notifier:      notificationsService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Customers:     customersService,
		Catalog:       catalogService,
		Inventory:     inventoryService,
		Wallet:        walletService,
		Orders:        ordersService,
		Payments:      paymentsService,
		Subscriptions: subscriptionsService,
		Notifications: notificationsService,
	}, nil
}
