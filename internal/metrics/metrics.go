package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Lookup Metrics
	LookupsTotal     *prometheus.CounterVec
	BatchSize        prometheus.Histogram
	CacheHitsTotal   *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter

	// Upstream Metrics
	UpstreamCallsTotal   *prometheus.CounterVec
	UpstreamCallDuration prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		LookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ip_lookups_total",
				Help: "Total number of IP lookups by result",
			},
			[]string{"result"},
		),

		BatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "batch_lookup_size",
				Help:    "Number of IPs per batch request after truncation",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "location_cache_requests_total",
				Help: "Result cache reads by outcome (hit or miss)",
			},
			[]string{"result"},
		),

		RateLimitedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),

		UpstreamCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_calls_total",
				Help: "Outbound provider calls by outcome",
			},
			[]string{"outcome"},
		),

		UpstreamCallDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "upstream_call_duration_seconds",
				Help:    "Outbound provider call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}
