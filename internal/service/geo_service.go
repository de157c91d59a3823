package service

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"ip-location-gateway/internal/cache"
	"ip-location-gateway/internal/clientip"
	"ip-location-gateway/internal/ipcheck"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/models"
	"ip-location-gateway/internal/upstream"
)

// GeoService handles the lookup flow between the result cache and the
// upstream client: cache read, upstream fetch on miss, deferred cache
// fill. It holds no per-request state; all cross-request coordination
// lives in the store behind the cache.
type GeoService struct {
	cache       *cache.Cache
	upstream    upstream.Client
	batchMax    int
	sourceLabel string
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

// NewGeoService creates a lookup service. sourceLabel is stamped on
// results produced locally (validation failures) rather than upstream.
// m and log are optional and may be nil.
func NewGeoService(c *cache.Cache, up upstream.Client, batchMax int, sourceLabel string, m *metrics.Metrics, log *logger.Logger) *GeoService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &GeoService{
		cache:       c,
		upstream:    up,
		batchMax:    batchMax,
		sourceLabel: sourceLabel,
		metrics:     m,
		logger:      log.WithComponent("GeoService"),
	}
}

// ResolveSingle implements the single-lookup flow. ipParam is the
// (possibly empty) ip query parameter; clientIP is the caller's address
// resolved from trusted proxy headers, used when ipParam is absent.
//
// The cache read comes first and a present entry is returned verbatim,
// without re-validating the IP. Validation applies only to a provided
// ipParam; an unresolvable caller address degrades into the upstream's
// fixed missing-parameter failure. Only successful results are cached,
// so failures are always retried upstream.
func (s *GeoService) ResolveSingle(ctx context.Context, ipParam, clientIP string) *models.LookupResult {
	effective := ipParam
	if effective == "" {
		effective = clientIP
	}

	if result, hit := s.cache.Get(ctx, effective); hit {
		s.logger.Debug().Str("ip", effective).Msg("Lookup served from cache")
		s.observe("cached")
		return result
	}

	if ipParam != "" && !ipcheck.Valid(ipParam) {
		s.observe("invalid")
		return &models.LookupResult{
			Code:      http.StatusBadRequest,
			Msg:       "invalid IP address",
			IP:        ipParam,
			Data:      nil,
			APISource: s.sourceLabel,
		}
	}

	target := effective
	if target == clientip.Unknown {
		// No trusted header: the upstream client turns an empty target
		// into its fixed missing-parameter failure without a network call.
		target = ""
	}

	result := s.upstream.Lookup(ctx, target)
	s.cache.Put(effective, result)

	if result.OK() {
		s.observe("success")
	} else {
		s.observe("error")
	}
	return result
}

// LookupDirect resolves ip against the upstream provider without
// touching the cache. Used by the client-ip route, which bypasses the
// caching and admission gating of the query routes.
func (s *GeoService) LookupDirect(ctx context.Context, ip string) *models.LookupResult {
	result := s.upstream.Lookup(ctx, ip)
	if result.OK() {
		s.observe("success")
	} else {
		s.observe("error")
	}
	return result
}

// LookupBatch resolves an ordered batch of IPs, truncated to the
// configured maximum. The result slice aligns index-for-index with the
// truncated input regardless of upstream completion order.
//
// Cache hits fill their slots directly; the remaining misses are
// fetched concurrently, bounded only by the batch cap. Duplicate IPs
// that both miss each trigger their own upstream call; the calls
// converge on equivalent results, so no in-flight coalescing is done.
// There is no batch-level failure: individual slots carry their own
// error codes.
func (s *GeoService) LookupBatch(ctx context.Context, ips []string) []*models.LookupResult {
	if len(ips) > s.batchMax {
		// Silently drop the remainder; exceeding the cap is not an error.
		ips = ips[:s.batchMax]
	}

	if s.metrics != nil {
		s.metrics.BatchSize.Observe(float64(len(ips)))
	}

	results := make([]*models.LookupResult, len(ips))
	var missIndexes []int

	for i, ip := range ips {
		if result, hit := s.cache.Get(ctx, ip); hit {
			results[i] = result
			s.observe("cached")
		} else {
			missIndexes = append(missIndexes, i)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, i := range missIndexes {
		i := i
		g.Go(func() error {
			result := s.upstream.Lookup(gctx, ips[i])
			results[i] = result
			s.cache.Put(ips[i], result)

			if result.OK() {
				s.observe("success")
			} else {
				s.observe("error")
			}
			return nil
		})
	}
	// Fetches never return errors; Wait is purely a barrier so the
	// response carries every slot.
	_ = g.Wait()

	s.logger.Info().
		Int("total", len(ips)).
		Int("misses", len(missIndexes)).
		Msg("Batch lookup completed")

	return results
}

func (s *GeoService) observe(result string) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(result).Inc()
	}
}
