package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxEntries = 500
	MatchTTL          = 24 * time.Hour
)

// SalaryTTL returns the default expiry per tier for salary lookups. Database hits
// outlive generated estimates, which outlive misses.
func SalaryTTL() map[Tier]time.Duration {
	return map[Tier]time.Duration{
		TierData:     7 * 24 * time.Hour,
		TierAI:       24 * time.Hour,
		TierNotFound: time.Hour,
	}
}

// Options configures a Cache.
type Options struct {
	TTL        map[Tier]time.Duration
	MaxEntries int
	Now        func() time.Time
}

// Cache applies expiry and size limits on top of a Store. Store failures are
// logged and reported as misses so callers never fail because of the cache.
type Cache struct {
	store      Store
	ttl        map[Tier]time.Duration
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger

	// mu serializes size enforcement.
	mu sync.Mutex
}

func New(store Store, opts Options, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxEntries == 0 {
		opts.MaxEntries = DefaultMaxEntries
	}

	ttl := make(map[Tier]time.Duration, len(opts.TTL))
	for tier, d := range opts.TTL {
		ttl[tier] = d
	}

	return &Cache{
		store:      store,
		ttl:        ttl,
		maxEntries: opts.MaxEntries,
		now:        opts.Now,
		logger:     logger,
	}
}

// Get decodes the unexpired record for key into out and returns its tier.
func (c *Cache) Get(ctx context.Context, key string, out any) (Tier, bool) {
	rec, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if rec == nil {
		return "", false
	}

	if rec.Expired(c.now(), c.ttl[rec.Tier]) {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Debug("dropping expired cache record failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}

	if err := json.Unmarshal(rec.Value, out); err != nil {
		c.logger.Warn("cache record could not be decoded", zap.String("key", key), zap.Error(err))
		return "", false
	}

	return rec.Tier, true
}

// Put stores value under key and evicts the oldest records once the cache holds
// more than the configured maximum.
func (c *Cache) Put(ctx context.Context, key string, tier Tier, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value could not be encoded", zap.String("key", key), zap.Error(err))
		return
	}

	rec := &Record{Key: key, Tier: tier, Value: data, CachedAt: c.now()}
	if err := c.store.Set(ctx, rec); err != nil {
		c.logger.Warn("cache write failed, skipping", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.enforceLimit(ctx); err != nil {
		c.logger.Warn("cache eviction failed", zap.Error(err))
	}
}

func (c *Cache) enforceLimit(ctx context.Context) error {
	if c.maxEntries <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) <= c.maxEntries {
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CachedAt.Equal(records[j].CachedAt) {
			return records[i].CachedAt.Before(records[j].CachedAt)
		}
		return records[i].Key < records[j].Key
	})

	overflow := len(records) - c.maxEntries
	keys := make([]string, 0, overflow)
	for _, rec := range records[:overflow] {
		keys = append(keys, rec.Key)
	}

	c.logger.Debug("evicting oldest cache records", zap.Int("count", len(keys)))
	return c.store.Delete(ctx, keys...)
}

// Sweep removes expired records and returns how many were dropped.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	records, err := c.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing cache records: %w", err)
	}

	now := c.now()
	var expired []string
	for _, rec := range records {
		if rec.Expired(now, c.ttl[rec.Tier]) {
			expired = append(expired, rec.Key)
		}
	}

	if err := c.store.Delete(ctx, expired...); err != nil {
		return 0, fmt.Errorf("deleting expired records: %w", err)
	}
	return len(expired), nil
}

// Clear drops every record.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Len counts stored records including expired ones not yet swept.
func (c *Cache) Len(ctx context.Context) (int, error) {
	records, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// EnsureVersion clears the given caches when the stored dataset version differs
// from version, then records version. It reports whether the caches were cleared.
func EnsureVersion(ctx context.Context, backend Backend, version int64, caches ...*Cache) (bool, error) {
	stored, ok, err := backend.Version(ctx)
	if err != nil {
		return false, err
	}
	if ok && stored == version {
		return false, nil
	}

	for _, c := range caches {
		if err := c.Clear(ctx); err != nil {
			return false, fmt.Errorf("clearing stale cache: %w", err)
		}
	}

	if err := backend.SetVersion(ctx, version); err != nil {
		return false, err
	}
	return true, nil
}
