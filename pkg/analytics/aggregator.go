package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/partdex/partdex/pkg/observability"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

// Cache keys the aggregator maintains; the API serves these when present so
// dashboard loads skip SQLite entirely.
const (
	CacheKeyCatalogStats     = "stats:catalogs"
	CacheKeyCategoryStats    = "stats:categories"
	CacheKeyAssociationStats = "stats:associations"
	CacheKeyDashboardStats   = "stats:dashboard"
)

// Aggregator recomputes catalog statistics and pushes them into Redis. It
// also refreshes the business gauges so Prometheus sees current totals.
type Aggregator struct {
	service *Service
	redis   *sqlite.RedisClient
	metrics *observability.Metrics
}

// NewAggregator creates a new aggregator. redis and metrics may be nil; the
// corresponding sink is skipped.
func NewAggregator(service *Service, redis *sqlite.RedisClient, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		service: service,
		redis:   redis,
		metrics: metrics,
	}
}

// RefreshAll recomputes every aggregate and pushes the results out.
func (a *Aggregator) RefreshAll(ctx context.Context, ttls CacheTTLs) error {
	catalogStats, err := a.service.CatalogStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog stats: %w", err)
	}

	categoryStats, err := a.service.CategoryDistribution(ctx)
	if err != nil {
		return fmt.Errorf("refresh category stats: %w", err)
	}

	associationStats, err := a.service.AssociationStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh association stats: %w", err)
	}

	dashboardStats, err := a.service.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh dashboard stats: %w", err)
	}

	if a.redis != nil {
		if err := a.redis.SetJSON(ctx, CacheKeyCatalogStats, catalogStats, ttls.Stats); err != nil {
			return fmt.Errorf("cache catalog stats: %w", err)
		}
		if err := a.redis.SetJSON(ctx, CacheKeyCategoryStats, categoryStats, ttls.Stats); err != nil {
			return fmt.Errorf("cache category stats: %w", err)
		}
		if err := a.redis.SetJSON(ctx, CacheKeyAssociationStats, associationStats, ttls.Stats); err != nil {
			return fmt.Errorf("cache association stats: %w", err)
		}
		if err := a.redis.SetJSON(ctx, CacheKeyDashboardStats, dashboardStats, ttls.Dashboard); err != nil {
			return fmt.Errorf("cache dashboard stats: %w", err)
		}
	}

	if a.metrics != nil {
		a.metrics.PartsTotal.Set(float64(dashboardStats.TotalParts))
		a.metrics.ImagesTotal.Set(float64(dashboardStats.TotalImages))
		a.metrics.GuidesTotal.Set(float64(dashboardStats.TotalGuides))
		a.metrics.AssociationsTotal.Set(float64(dashboardStats.TotalAssociations))
	}

	return nil
}

// CacheTTLs carries the expiries the aggregator writes with.
type CacheTTLs struct {
	Stats     time.Duration
	Dashboard time.Duration
}
