package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"ip-location-gateway/internal/clientip"
	"ip-location-gateway/internal/ipcheck"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/models"
	"ip-location-gateway/internal/service"
)

// GeoHandler handles HTTP requests for geolocation lookups.
// This is the handler layer: it parses requests, calls the service and
// renders the JSON envelopes. No lookup logic lives here.
type GeoHandler struct {
	service  *service.GeoService
	validate *validator.Validate
	logger   *logger.Logger
}

// NewGeoHandler creates a new geolocation handler.
func NewGeoHandler(svc *service.GeoService, log *logger.Logger) *GeoHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &GeoHandler{
		service:  svc,
		validate: validator.New(),
		logger:   log.WithComponent("handler"),
	}
}

// IPLocation handles GET /api/ip-location?ip=<addr>.
// An omitted ip parameter resolves the caller's own address from the
// trusted proxy headers.
func (h *GeoHandler) IPLocation(w http.ResponseWriter, r *http.Request) {
	ipParam := r.URL.Query().Get("ip")
	callerIP := clientip.FromRequest(r)

	result := h.service.ResolveSingle(r.Context(), ipParam, callerIP)
	h.respondJSON(w, httpStatus(result.Code), result)
}

// BatchLocation handles POST /api/batch-location with body {"ips": [...]}.
// The whole batch is rejected if the body is malformed, the array is
// missing or empty, or any member fails validation; no upstream calls
// are made in those cases.
func (h *GeoHandler) BatchLocation(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Malformed batch body")
		h.respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "please provide a valid array of IP addresses")
		return
	}

	// Every member is validated, including any past the batch cap;
	// truncation is the coordinator's concern, rejection is ours.
	if bad := ipcheck.Invalid(req.IPs); len(bad) > 0 {
		h.respondError(w, http.StatusBadRequest, "invalid IP addresses: "+strings.Join(bad, ", "))
		return
	}

	results := h.service.LookupBatch(r.Context(), req.IPs)

	h.respondJSON(w, http.StatusOK, models.BatchResponse{
		Code:  http.StatusOK,
		Msg:   "batch query completed",
		Data:  results,
		Total: len(results),
	})
}

// ClientIP handles GET /api/client-ip: the caller's own address looked
// up directly against upstream, bypassing cache and rate limiting.
func (h *GeoHandler) ClientIP(w http.ResponseWriter, r *http.Request) {
	callerIP := clientip.FromRequest(r)
	if callerIP == clientip.Unknown {
		empty := ""
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code: http.StatusBadRequest,
			Msg:  "unable to determine client IP address",
			IP:   &empty,
			Data: nil,
		})
		return
	}

	result := h.service.LookupDirect(r.Context(), callerIP)
	h.respondJSON(w, httpStatus(result.Code), result)
}

// respondJSON writes a JSON response with the given status code.
func (h *GeoHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing left to do but log.
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the structural-error envelope {code, msg, data:null}.
func (h *GeoHandler) respondError(w http.ResponseWriter, code int, msg string) {
	h.respondJSON(w, code, models.ErrorResponse{Code: code, Msg: msg, Data: nil})
}

// httpStatus maps an envelope code onto the HTTP status line. Provider
// codes outside the valid HTTP range ride on a 200.
func httpStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	return http.StatusOK
}
