package sqlite

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/storage"
)

// CachedStore layers an in-process LRU (L1) and Redis (L2) over the base
// store. Hot part lookups are served from the LRU; list and detail payloads
// live in Redis with per-kind TTLs. Association writes invalidate anything
// derived from the pair they touch.
type CachedStore struct {
	storage.Store
	redis *RedisClient
	l1    *lru.Cache[int64, *catalog.Part]
	cfg   storage.Config
}

// NewCachedStore wraps base with the cache layers. redis may be nil, in
// which case only the LRU is used.
func NewCachedStore(base storage.Store, redis *RedisClient, cfg storage.Config) (*CachedStore, error) {
	size := cfg.L1CacheSize
	if size <= 0 {
		size = 1024
	}
	l1, err := lru.New[int64, *catalog.Part](size)
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}
	return &CachedStore{
		Store: base,
		redis: redis,
		l1:    l1,
		cfg:   cfg,
	}, nil
}

// GetPartByID serves hot parts from the LRU before touching the database.
func (c *CachedStore) GetPartByID(ctx context.Context, id int64) (*catalog.Part, error) {
	if p, ok := c.l1.Get(id); ok {
		return p, nil
	}

	p, err := c.Store.GetPartByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.l1.Add(id, p)
	return p, nil
}

// GetPartByNumber is cached in Redis keyed by part number.
func (c *CachedStore) GetPartByNumber(ctx context.Context, partNumber string) ([]catalog.PartDetail, error) {
	key := "part:number:" + partNumber

	if c.redis != nil {
		var cached []catalog.PartDetail
		if ok, _ := c.redis.GetJSON(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	details, err := c.Store.GetPartByNumber(ctx, partNumber)
	if err != nil {
		return nil, err
	}

	if c.redis != nil && len(details) > 0 {
		// Best effort; a failed cache write never fails the read.
		_ = c.redis.SetJSON(ctx, key, details, c.cfg.CacheTTL["part"])
	}
	return details, nil
}

// ListCatalogs is cached in Redis under a single key.
func (c *CachedStore) ListCatalogs(ctx context.Context) ([]catalog.CatalogInfo, error) {
	const key = "catalogs:list"

	if c.redis != nil {
		var cached []catalog.CatalogInfo
		if ok, _ := c.redis.GetJSON(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	catalogs, err := c.Store.ListCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		_ = c.redis.SetJSON(ctx, key, catalogs, c.cfg.CacheTTL["list"])
	}
	return catalogs, nil
}

// GuidesForPart is cached per part and invalidated on association writes.
func (c *CachedStore) GuidesForPart(ctx context.Context, partID int64) ([]catalog.GuideForPart, error) {
	key := fmt.Sprintf("part:%d:guides", partID)

	if c.redis != nil {
		var cached []catalog.GuideForPart
		if ok, _ := c.redis.GetJSON(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	guides, err := c.Store.GuidesForPart(ctx, partID)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		_ = c.redis.SetJSON(ctx, key, guides, c.cfg.CacheTTL["guide"])
	}
	return guides, nil
}

// Associate writes through and invalidates everything derived from the pair.
func (c *CachedStore) Associate(ctx context.Context, partID, guideID int64, confidence float64) (catalog.AssociationOutcome, error) {
	outcome, err := c.Store.Associate(ctx, partID, guideID, confidence)
	if err != nil {
		return outcome, err
	}
	if outcome == catalog.AssociationInserted {
		c.invalidatePair(ctx, partID)
	}
	return outcome, nil
}

// Dissociate writes through and invalidates on actual removal.
func (c *CachedStore) Dissociate(ctx context.Context, partID, guideID int64) (bool, error) {
	removed, err := c.Store.Dissociate(ctx, partID, guideID)
	if err != nil {
		return removed, err
	}
	if removed {
		c.invalidatePair(ctx, partID)
	}
	return removed, nil
}

// InsertPart writes through and drops list-level caches.
func (c *CachedStore) InsertPart(ctx context.Context, p *catalog.Part) (int64, error) {
	id, err := c.Store.InsertPart(ctx, p)
	if err != nil {
		return id, err
	}
	if c.redis != nil {
		_ = c.redis.Invalidate(ctx, "catalogs:list")
		_ = c.redis.InvalidatePatterns(ctx, "stats:*")
	}
	return id, nil
}

// UpdatePart writes through and drops the part from both cache layers. The
// row is read first so that a part-number change invalidates the entry keyed
// by the old number too.
func (c *CachedStore) UpdatePart(ctx context.Context, p *catalog.Part) error {
	old, _ := c.Store.GetPartByID(ctx, p.ID)

	if err := c.Store.UpdatePart(ctx, p); err != nil {
		return err
	}
	c.l1.Remove(p.ID)
	if c.redis != nil {
		keys := []string{"part:number:" + p.PartNumber}
		if old != nil && old.PartNumber != p.PartNumber {
			keys = append(keys, "part:number:"+old.PartNumber)
		}
		_ = c.redis.Invalidate(ctx, keys...)
	}
	return nil
}

// DeletePart writes through and drops the part from both cache layers.
func (c *CachedStore) DeletePart(ctx context.Context, id int64) error {
	p, _ := c.Store.GetPartByID(ctx, id)

	if err := c.Store.DeletePart(ctx, id); err != nil {
		return err
	}

	c.l1.Remove(id)
	if c.redis != nil {
		keys := []string{fmt.Sprintf("part:%d:guides", id), "catalogs:list"}
		if p != nil {
			keys = append(keys, "part:number:"+p.PartNumber)
		}
		_ = c.redis.Invalidate(ctx, keys...)
		_ = c.redis.InvalidatePatterns(ctx, "stats:*")
	}
	return nil
}

func (c *CachedStore) invalidatePair(ctx context.Context, partID int64) {
	c.l1.Remove(partID)
	if c.redis == nil {
		return
	}
	keys := []string{fmt.Sprintf("part:%d:guides", partID)}
	if p, err := c.Store.GetPartByID(ctx, partID); err == nil {
		keys = append(keys, "part:number:"+p.PartNumber)
	}
	_ = c.redis.Invalidate(ctx, keys...)
	_ = c.redis.InvalidatePatterns(ctx, "stats:*")
}

// HealthCheck checks the base store and, when configured, Redis.
func (c *CachedStore) HealthCheck(ctx context.Context) error {
	if err := c.Store.HealthCheck(ctx); err != nil {
		return err
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close closes the base store and the Redis connection.
func (c *CachedStore) Close() error {
	if c.redis != nil {
		c.redis.Close()
	}
	return c.Store.Close()
}
