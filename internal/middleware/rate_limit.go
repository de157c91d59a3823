package middleware

import (
	"encoding/json"
	"net/http"

	"ip-location-gateway/internal/clientip"
	"ip-location-gateway/internal/limiter"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/models"
)

// RateLimit enforces the per-client admission check on the routes it
// wraps; the client identifier comes from the trusted proxy headers.
// Rejections render the standard envelope with code 429 and mutate no
// counter state. m is optional and may be nil.
func RateLimit(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientip.FromRequest(r)

			if !lim.Allow(r.Context(), clientID) {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Code: http.StatusTooManyRequests,
					Msg:  "too many requests, please try again later",
					IP:   &clientID,
					Data: nil,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
