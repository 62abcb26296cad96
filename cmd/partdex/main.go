package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/partdex/partdex/pkg/analytics"
	"github.com/partdex/partdex/pkg/api"
	"github.com/partdex/partdex/pkg/config"
	"github.com/partdex/partdex/pkg/httputil"
	"github.com/partdex/partdex/pkg/observability"
	"github.com/partdex/partdex/pkg/search"
	"github.com/partdex/partdex/pkg/storage"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("db_path", cfg.Storage.SQLitePath).Info("Starting partdex API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry (no-op when disabled)
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("OpenTelemetry initialization failed, continuing without tracing")
	}
	defer func() {
		if otelProviders != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := observability.ShutdownOTel(shutdownCtx, otelProviders, logger); err != nil {
				logger.WithError(err).Error("OpenTelemetry shutdown failed")
			}
		}
	}()

	// Storage
	sqliteStore, err := sqlite.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var store storage.Store = sqliteStore
	var redisClient *sqlite.RedisClient
	if cfg.Storage.CacheEnabled {
		redisClient, err = sqlite.NewRedisClient(cfg.Storage)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running without cache")
		} else {
			cached, err := sqlite.NewCachedStore(sqliteStore, redisClient, cfg.Storage)
			if err != nil {
				log.Fatalf("Failed to build cache layer: %v", err)
			}
			store = cached
			logger.Info("Redis cache enabled")
		}
	}
	defer store.Close()

	var s3Client *sqlite.S3Client
	if cfg.Storage.S3Enabled {
		s3Client, err = sqlite.NewS3Client(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize S3 client: %v", err)
		}
		logger.WithField("bucket", cfg.Storage.S3Bucket).Info("S3 guide storage enabled")
	}

	// Services on the raw connection; search and analytics bypass the cache.
	searchService := search.NewService(sqliteStore.DB())
	analyticsService := analytics.NewService(sqliteStore.DB())

	server := api.NewServer(store, api.Options{
		Search:    searchService,
		Analytics: analyticsService,
		Redis:     redisClient,
		S3:        s3Client,
		Media:     cfg.Media,
		Logger:    logger,
	})

	// Metrics registry and middleware chain
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(nil),
		observability.HTTPMetricsMiddleware(metrics),
	)(server)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Separate health/metrics listener so probes stay off the public port.
	healthMux := http.NewServeMux()
	observability.RegisterMetricsEndpoint(healthMux, registry)
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.HealthCheck(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("API server shutdown failed")
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("Server stopped")
}
