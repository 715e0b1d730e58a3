package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rgavilanm/localspot-backend/api/routes"
	"github.com/rgavilanm/localspot-backend/internal/businesses"
	"github.com/rgavilanm/localspot-backend/internal/identity"
	"github.com/rgavilanm/localspot-backend/internal/media"
	"github.com/rgavilanm/localspot-backend/internal/reviews"
	"github.com/rgavilanm/localspot-backend/internal/saved"
	"github.com/rgavilanm/localspot-backend/internal/session"
	sessionstore "github.com/rgavilanm/localspot-backend/pkg/auth/session"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/metrics"
	"github.com/rgavilanm/localspot-backend/pkg/migrate"
	"github.com/rgavilanm/localspot-backend/pkg/redis"
	"github.com/rgavilanm/localspot-backend/pkg/storage/gcs"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	sessionManager, err := sessionstore.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	authMetrics := metrics.NewAuthFlowMetrics(registry)

	var gcsClient *gcs.Client
	if cfg.Storage.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.Storage, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "storage bucket not configured, media endpoints disabled")
	}

	sessionService, err := session.NewService(session.ServiceParams{
		UserRepo:       session.NewRepository(dbClient.DB()),
		SessionRevoker: sessionManager,
		HintStore:      redisClient,
		WalletConfig:   cfg.Wallet,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identity.ServiceParams{
		NonceStore:     redisClient,
		SessionService: sessionService,
		RefreshIssuer:  sessionManager,
		JWTConfig:      cfg.JWT,
		WalletConfig:   cfg.Wallet,
		AuthMetrics:    authMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	businessRepo := businesses.NewRepository(dbClient.DB())

	businessService, err := businesses.NewService(businesses.ServiceParams{
		Repo:   businessRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create business service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		DB:           dbClient.DB(),
		ReviewRepo:   reviews.NewRepository(dbClient.DB()),
		BusinessRepo: businessRepo,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	savedService, err := saved.NewService(saved.ServiceParams{
		SavedRepo:    saved.NewRepository(dbClient.DB()),
		BusinessRepo: businessRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create saved service", err)
		os.Exit(1)
	}

	var mediaService media.Service
	if gcsClient != nil {
		mediaService, err = media.NewService(media.ServiceParams{
			ImageRepo:     media.NewRepository(dbClient.DB()),
			BusinessRepo:  businessRepo,
			StorageClient: gcsClient,
			StorageConfig: cfg.Storage,
			MediaConfig:   cfg.Media,
			Logger:        logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create media service", err)
			os.Exit(1)
		}
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

	routerParams := routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Session:         sessionManager,
		IdentityService: identityService,
		SessionService:  sessionService,
		BusinessService: businessService,
		ReviewService:   reviewService,
		SavedService:    savedService,
		MediaService:    mediaService,
		Metrics:         registry,
	}
	if gcsClient != nil {
		routerParams.GCS = gcsClient
	}
	router := routes.NewRouter(routerParams)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
