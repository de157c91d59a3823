package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/models"
)

// Client issues one geolocation lookup against the external provider.
// Implementations never return an error: every failure path is folded
// into a LookupResult with a non-200 code, so callers have a single
// result shape to cache, batch and render.
type Client interface {
	Lookup(ctx context.Context, ip string) *models.LookupResult
}

// HTTPClient is the production Client, talking JSON over HTTP to the
// provider's details endpoint (GET <base>?ip=<addr>).
type HTTPClient struct {
	baseURL     string
	sourceLabel string
	httpClient  *http.Client
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

// Config holds upstream client configuration.
type Config struct {
	BaseURL     string
	SourceLabel string        // provenance tag stamped on locally produced results
	Timeout     time.Duration // outbound call timeout; 5s when zero
}

// providerEnvelope is the provider's raw response shape. It happens to
// match our own envelope field-for-field, but is decoded separately so
// a provider schema drift can't silently leak into cached results.
type providerEnvelope struct {
	Code      int                  `json:"code"`
	Msg       string               `json:"msg"`
	IP        string               `json:"ip"`
	Data      *models.LocationData `json:"data"`
	APISource string               `json:"api_source"`
}

// NewHTTPClient creates a provider client.
// m and log are optional and may be nil.
func NewHTTPClient(cfg Config, m *metrics.Metrics, log *logger.Logger) *HTTPClient {
	if log == nil {
		log = logger.NewDefault()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		// A hung provider call must not pin a request forever.
		timeout = 5 * time.Second
	}

	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		sourceLabel: cfg.SourceLabel,
		httpClient:  &http.Client{Timeout: timeout},
		metrics:     m,
		logger:      log.WithComponent("upstream"),
	}
}

// Lookup fetches the location of ip from the provider.
//
// An empty ip yields a fixed 400 result without any network call.
// A provider envelope with code==200 and non-nil data maps to a success
// result; any other envelope keeps the provider's code/msg when present,
// else 400. Transport and decode failures map to 500.
func (c *HTTPClient) Lookup(ctx context.Context, ip string) *models.LookupResult {
	if ip == "" {
		return &models.LookupResult{
			Code:      http.StatusBadRequest,
			Msg:       "this API requires an IP address parameter",
			IP:        "",
			Data:      nil,
			APISource: c.sourceLabel,
		}
	}

	q := url.Values{}
	q.Set("ip", ip)
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return c.transportFailure(ip, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(ip, err)
	}
	defer resp.Body.Close()

	var envelope providerEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return c.transportFailure(ip, err)
	}

	duration := time.Since(start)

	if envelope.Code == 200 && envelope.Data != nil {
		c.logger.Debug().
			Str("ip", ip).
			Dur("duration_ms", duration).
			Msg("Upstream lookup succeeded")
		c.observe("success", duration)

		return &models.LookupResult{
			Code:      envelope.Code,
			Msg:       envelope.Msg,
			IP:        envelope.IP,
			Data:      envelope.Data,
			APISource: envelope.APISource,
		}
	}

	// Provider-reported failure: keep its code/msg when available.
	code := envelope.Code
	if code == 0 {
		code = http.StatusBadRequest
	}
	msg := envelope.Msg
	if msg == "" {
		msg = "lookup failed"
	}
	label := envelope.APISource
	if label == "" {
		label = c.sourceLabel
	}

	c.logger.Warn().
		Str("ip", ip).
		Int("provider_code", envelope.Code).
		Str("provider_msg", envelope.Msg).
		Msg("Upstream reported failure")
	c.observe("provider_error", duration)

	return &models.LookupResult{
		Code:      code,
		Msg:       msg,
		IP:        ip,
		Data:      nil,
		APISource: label,
	}
}

// transportFailure maps network and decode errors to a 500 result.
func (c *HTTPClient) transportFailure(ip string, err error) *models.LookupResult {
	c.logger.Error().Err(err).Str("ip", ip).Msg("Upstream request failed")
	c.observe("transport_error", 0)

	return &models.LookupResult{
		Code:      http.StatusInternalServerError,
		Msg:       "upstream request failed",
		IP:        ip,
		Data:      nil,
		APISource: c.sourceLabel,
	}
}

func (c *HTTPClient) observe(outcome string, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamCallsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		c.metrics.UpstreamCallDuration.Observe(duration.Seconds())
	}
}
