package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/partdex/partdex/pkg/analytics"
	"github.com/partdex/partdex/pkg/config"
	"github.com/partdex/partdex/pkg/observability"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

var (
	refreshSchedule = flag.String("refresh-schedule", "*/15 * * * *", "Cron schedule for stats refresh (default: every 15 minutes)")
	statsTTL        = flag.Duration("stats-ttl", time.Hour, "Redis TTL for cached per-catalog stats")
	dashboardTTL    = flag.Duration("dashboard-ttl", 30*time.Minute, "Redis TTL for cached dashboard stats")
	runOnce         = flag.Bool("run-once", false, "Run one refresh and exit (for testing)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	store, err := sqlite.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	var redisClient *sqlite.RedisClient
	if cfg.Storage.CacheEnabled {
		redisClient, err = sqlite.NewRedisClient(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn("Cache disabled, stats will only be published as metrics")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	service := analytics.NewService(store.DB())
	aggregator := analytics.NewAggregator(service, redisClient, metrics)
	ttls := analytics.CacheTTLs{Stats: *statsTTL, Dashboard: *dashboardTTL}

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.QueryTimeout)
		defer cancel()

		start := time.Now()
		if err := aggregator.RefreshAll(ctx, ttls); err != nil {
			logger.WithError(err).Error("Stats refresh failed")
			return
		}
		logger.WithField("duration", time.Since(start).String()).Info("Stats refreshed")
	}

	if *runOnce {
		refresh()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*refreshSchedule, refresh); err != nil {
		log.Fatalf("Failed to schedule stats refresh: %v", err)
	}

	// Prime the caches immediately rather than waiting for the first tick.
	refresh()

	c.Start()
	logger.WithField("schedule", *refreshSchedule).Info("Aggregator started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully")
	<-c.Stop().Done()
	logger.Info("Aggregator stopped")
}
