package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/accswap/accswap-backend/api/routes"
	"github.com/accswap/accswap-backend/internal/auth"
	"github.com/accswap/accswap-backend/internal/escrow"
	"github.com/accswap/accswap-backend/internal/listings"
	"github.com/accswap/accswap-backend/internal/offers"
	"github.com/accswap/accswap-backend/internal/profiles"
	"github.com/accswap/accswap-backend/internal/users"
	razorpaywebhook "github.com/accswap/accswap-backend/internal/webhooks/razorpay"
	"github.com/accswap/accswap-backend/pkg/auth/session"
	"github.com/accswap/accswap-backend/pkg/config"
	"github.com/accswap/accswap-backend/pkg/db"
	"github.com/accswap/accswap-backend/pkg/logger"
	"github.com/accswap/accswap-backend/pkg/metrics"
	"github.com/accswap/accswap-backend/pkg/migrate"
	"github.com/accswap/accswap-backend/pkg/razorpay"
	"github.com/accswap/accswap-backend/pkg/redis"
	"github.com/accswap/accswap-backend/pkg/security"
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

	cipher, err := security.NewCredentialCipher(cfg.Vault)
	if err != nil {
		logg.Error(context.Background(), "failed to build credential cipher", err)
		os.Exit(1)
	}

	gatewayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	escrowMetrics := metrics.NewEscrowMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	listingRepo := listings.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())

	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:     listingRepo,
		Profiles: profileRepo,
		Cipher:   cipher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(offers.ServiceParams{
		Repo:     offers.NewRepository(dbClient.DB()),
		Listings: listingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	profileService, err := profiles.NewService(profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	escrowService, err := escrow.NewService(escrow.ServiceParams{
		DB:           dbClient,
		Transactions: escrow.NewRepository(dbClient.DB()),
		Listings:     listingRepo,
		Gateway:      gatewayClient,
		Cipher:       cipher,
		Metrics:      escrowMetrics,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create escrow service", err)
		os.Exit(1)
	}

	webhookService, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
		Escrow:   escrowService,
		Store:    redisClient,
		EventTTL: cfg.Escrow.WebhookEventTTL,
		Metrics:  escrowMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			Metrics:         registry,
			AuthService:     authService,
			RegisterService: registerService,
			ListingService:  listingService,
			OfferService:    offerService,
			ProfileService:  profileService,
			EscrowService:   escrowService,
			WebhookService:  webhookService,
			Gateway:         gatewayClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
