package upstream

import (
	"context"
	"net/http"
	"sync"

	"ip-location-gateway/internal/models"
)

// MockClient is a test double for the Client interface.
// It serves canned results per IP and records every lookup, letting
// tests count upstream calls (cache hits must never reach it).
type MockClient struct {
	mu sync.Mutex

	// Results maps IP -> canned result. IPs without an entry get a
	// generic provider failure.
	Results map[string]*models.LookupResult

	// LookupCalls lists the IPs Lookup was called with, in order.
	LookupCalls []string
}

// NewMockClient creates a mock with no canned results.
func NewMockClient() *MockClient {
	return &MockClient{Results: map[string]*models.LookupResult{}}
}

// SetSuccess registers a canned successful result for ip.
func (m *MockClient) SetSuccess(ip, country, city string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Results[ip] = &models.LookupResult{
		Code: http.StatusOK,
		Msg:  "query successful",
		IP:   ip,
		Data: &models.LocationData{
			Country: country,
			City:    city,
		},
		APISource: "mock",
	}
}

// SetFailure registers a canned failure result for ip.
func (m *MockClient) SetFailure(ip string, code int, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Results[ip] = &models.LookupResult{
		Code:      code,
		Msg:       msg,
		IP:        ip,
		Data:      nil,
		APISource: "mock",
	}
}

// Lookup implements the Client interface.
func (m *MockClient) Lookup(_ context.Context, ip string) *models.LookupResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LookupCalls = append(m.LookupCalls, ip)

	if ip == "" {
		return &models.LookupResult{
			Code:      http.StatusBadRequest,
			Msg:       "this API requires an IP address parameter",
			IP:        "",
			APISource: "mock",
		}
	}

	if res, ok := m.Results[ip]; ok {
		dup := *res
		return &dup
	}

	return &models.LookupResult{
		Code:      http.StatusBadRequest,
		Msg:       "lookup failed",
		IP:        ip,
		APISource: "mock",
	}
}

// Calls returns a snapshot of the IPs Lookup was called with.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.LookupCalls))
	copy(out, m.LookupCalls)
	return out
}
