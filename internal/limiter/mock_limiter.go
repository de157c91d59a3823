package limiter

import "context"

// MockLimiter is a test double for the Limiter interface.
// It allows tests to control allow/deny behavior and verify interactions.
type MockLimiter struct {
	// Control behavior
	AllowResult bool

	// Track method calls for verification in tests
	AllowCalls  []string // client IDs Allow() was called with
	CloseCalled bool
}

// NewMockLimiter creates a mock limiter with the given allow behavior.
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{
		AllowResult: allowResult,
		AllowCalls:  []string{},
	}
}

// Allow implements the Limiter interface.
func (m *MockLimiter) Allow(_ context.Context, clientID string) bool {
	m.AllowCalls = append(m.AllowCalls, clientID)
	return m.AllowResult
}

// Close implements the Limiter interface.
func (m *MockLimiter) Close() error {
	m.CloseCalled = true
	return nil
}
