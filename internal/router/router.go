package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ip-location-gateway/internal/handler"
	"ip-location-gateway/internal/limiter"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	custommiddleware "ip-location-gateway/internal/middleware"
)

// Setup creates and configures the Chi router with all middleware and
// routes. CORS sits before routing so preflight and 404 responses carry
// the headers too; the rate limiter gates only the two query routes,
// the client-ip route is deliberately outside the group.
func Setup(geoHandler *handler.GeoHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(custommiddleware.CORS)
	r.Use(custommiddleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.Metrics(m))

	// Rate-limited query routes
	r.Group(func(gr chi.Router) {
		gr.Use(custommiddleware.RateLimit(rateLimiter, m))
		gr.Get("/api/ip-location", geoHandler.IPLocation)
		gr.Post("/api/batch-location", geoHandler.BatchLocation)
	})

	// Caller self-lookup, ungated
	r.Get("/api/client-ip", geoHandler.ClientIP)

	// Operational endpoints
	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("Method not allowed"))
	})

	return r
}

// healthCheckHandler is a liveness probe for load balancers and monitoring.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
