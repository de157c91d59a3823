package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/models"
	"ip-location-gateway/internal/store"
)

// keyPrefix namespaces cached results in the shared key-value store.
const keyPrefix = "loc:"

// Cache is the read-through result cache in front of the upstream
// client. Entries are keyed purely by IP string, so a batch lookup and
// a single lookup for the same address share one entry.
//
// Reads are awaited; writes are scheduled on the background task scope
// so the response is never delayed by store latency. The store is
// fail-open in both directions: a store error reads as a miss, and a
// failed write is logged and dropped.
type Cache struct {
	store   store.Store
	tasks   *background.Tasks
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New creates a result cache over the given store.
// m and log are optional and may be nil.
func New(s store.Store, tasks *background.Tasks, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Cache{
		store:   s,
		tasks:   tasks,
		ttl:     ttl,
		metrics: m,
		logger:  log.WithComponent("cache"),
	}
}

// Get returns the cached result for ip, if present and unexpired.
// A present entry is returned verbatim; the caller must not re-validate
// the IP or contact upstream. Misses are silent.
func (c *Cache) Get(ctx context.Context, ip string) (*models.LookupResult, bool) {
	raw, err := c.store.Get(ctx, keyPrefix+ip)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Store outage: fail open to upstream.
			c.logger.Warn().Err(err).Str("ip", ip).Msg("Cache read failed, treating as miss")
		}
		c.observe("miss")
		return nil, false
	}

	var result models.LookupResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Warn().Err(err).Str("ip", ip).Msg("Cached entry undecodable, treating as miss")
		c.observe("miss")
		return nil, false
	}

	c.observe("hit")
	return &result, true
}

// Put schedules a deferred write of result under ip. Only successful
// results are stored: a transient upstream failure must not poison
// later requests for the same address.
func (c *Cache) Put(ip string, result *models.LookupResult) {
	if !result.OK() {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error().Err(err).Str("ip", ip).Msg("Failed to encode result for cache")
		return
	}

	c.tasks.Go(func(ctx context.Context) {
		if err := c.store.Set(ctx, keyPrefix+ip, string(data), c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("ip", ip).Msg("Cache write failed")
		}
	})
}

func (c *Cache) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(outcome).Inc()
	}
}
