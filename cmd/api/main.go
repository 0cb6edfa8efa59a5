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

	"github.com/cargodesk/cargodesk-backend/api/controllers"
	"github.com/cargodesk/cargodesk-backend/api/routes"
	"github.com/cargodesk/cargodesk-backend/internal/attachments"
	"github.com/cargodesk/cargodesk-backend/internal/containers"
	"github.com/cargodesk/cargodesk-backend/internal/exchange"
	"github.com/cargodesk/cargodesk-backend/internal/extraction"
	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/db"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"github.com/cargodesk/cargodesk-backend/pkg/metrics"
	"github.com/cargodesk/cargodesk-backend/pkg/migrate"
	pkgredis "github.com/cargodesk/cargodesk-backend/pkg/redis"
	"github.com/cargodesk/cargodesk-backend/pkg/storage/gcs"
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

	readyChecks := map[string]controllers.Pinger{"db": dbClient}

	// Redis backs write idempotency; without it replay protection is off
	// but every route still works.
	var idemStore pkgredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idemStore = redisClient
		readyChecks["redis"] = redisClient
	}

	// Without a bucket attachments keep their embedded payloads in the row.
	var blobStore attachments.BlobStore
	var blobFetcher exchange.BlobFetcher
	if cfg.GCS.Enabled() {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap blob storage", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing blob storage", err)
			}
		}()
		blobStore = gcsClient
		blobFetcher = gcsClient
		readyChecks["gcs"] = gcsClient
	}

	containersRepo := containers.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())

	containersSvc, err := containers.NewService(containersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create containers service", err)
		os.Exit(1)
	}
	itemsSvc, err := items.NewService(itemsRepo, containersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create items service", err)
		os.Exit(1)
	}
	attachmentsSvc, err := attachments.NewService(itemsRepo, blobStore, cfg.Attachments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments service", err)
		os.Exit(1)
	}
	exchangeSvc, err := exchange.NewService(itemsRepo, itemsSvc, containersRepo, blobFetcher, cfg.Attachments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create exchange service", err)
		os.Exit(1)
	}
	extractionSvc, err := extraction.NewService(cfg.OpenAI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create extraction service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"read_only": cfg.FeatureFlags.ReadOnly,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Containers:       containersSvc,
			Items:            itemsSvc,
			Attachments:      attachmentsSvc,
			Exchange:         exchangeSvc,
			Extraction:       extractionSvc,
			IdempotencyStore: idemStore,
			HTTPMetrics:      metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			ReadyChecks:      readyChecks,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
