package models

// LocationData carries the geographic fields returned by the upstream
// provider. All fields are best-effort: a provider that doesn't know a
// value sends it empty, never as an error.
// JSON tags match the provider's wire format so results can be passed
// through and cached verbatim.
type LocationData struct {
	Continent     string  `json:"continent"`
	ContinentCode string  `json:"continentCode"`
	Country       string  `json:"country"`
	CountryCode   string  `json:"countryCode"`
	Region        string  `json:"region"`
	RegionCode    string  `json:"regionCode"`
	Subdivisions  string  `json:"subdivisions"`
	City          string  `json:"city"`
	Districts     string  `json:"districts"`
	Address       string  `json:"address"`
	Organization  string  `json:"organization"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Timezone      string  `json:"timezone"`
}

// LookupResult is the canonical per-IP response envelope.
// Code is 200 on success; Data is non-nil iff Code == 200.
type LookupResult struct {
	Code      int           `json:"code"`
	Msg       string        `json:"msg"`
	IP        string        `json:"ip"`
	Data      *LocationData `json:"data"`
	APISource string        `json:"api_source"`
}

// OK reports whether the lookup succeeded.
func (r *LookupResult) OK() bool {
	return r != nil && r.Code == 200
}

// BatchRequest is the body of POST /api/batch-location.
// The validator tags reject a missing or empty ips array before any
// per-member IP validation runs.
type BatchRequest struct {
	IPs []string `json:"ips" validate:"required,min=1"`
}

// BatchResponse wraps a batch of lookup results. The envelope Code is
// always 200 when the batch was structurally valid, even if individual
// elements carry error codes.
type BatchResponse struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Data  []*LookupResult `json:"data"`
	Total int             `json:"total"`
}

// ErrorResponse is the envelope for structural errors (bad batch body,
// rate limiting, unresolvable client IP). IP is rendered only on routes
// that echo an address back.
type ErrorResponse struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	IP   *string `json:"ip,omitempty"`
	Data any     `json:"data"`
}
