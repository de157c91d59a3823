package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is a test double for the Store interface.
// It allows tests to control behavior and verify interactions.
type MockStore struct {
	mu sync.Mutex

	// Data holds the mock key/value state
	Data map[string]string

	// Track method calls for verification in tests
	GetCalls        []string
	SetCalls        []string
	SetKeepTTLCalls []string
	LastTTL         time.Duration
	LastFallbackTTL time.Duration
	CloseCalled     bool

	// Control error scenarios
	GetError error // returned by every Get when set (store outage)
	SetError error // returned by every Set / SetKeepTTL when set
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{Data: map[string]string{}}
}

// Get implements the Store interface.
func (m *MockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetError != nil {
		return "", m.GetError
	}
	val, ok := m.Data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set implements the Store interface.
func (m *MockStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, key)
	m.LastTTL = ttl
	if m.SetError != nil {
		return m.SetError
	}
	m.Data[key] = value
	return nil
}

// SetKeepTTL implements the Store interface.
func (m *MockStore) SetKeepTTL(_ context.Context, key, value string, fallbackTTL time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetKeepTTLCalls = append(m.SetKeepTTLCalls, key)
	m.LastFallbackTTL = fallbackTTL
	if m.SetError != nil {
		return m.SetError
	}
	m.Data[key] = value
	return nil
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCalled = true
	return nil
}
