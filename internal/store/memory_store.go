package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for
// single-instance deployments and tests; cache and rate-limit state is
// lost on restart and not shared between instances.
//
// Expiry is lazy: entries are checked on read and swept opportunistically
// on write. No janitor goroutine.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value    string
	expireAt time.Time // zero => no TTL
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

// Set implements the Store interface.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.sweepLocked()
	s.entries[key] = memoryEntry{value: value, expireAt: expireAt}
	s.mu.Unlock()
	return nil
}

// SetKeepTTL implements the Store interface. The existing expiry is
// preserved; writing to an absent or expired key attaches fallbackTTL
// instead, so a late write never leaves a key without an expiry.
func (s *MemoryStore) SetKeepTTL(_ context.Context, key, value string, fallbackTTL time.Duration) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var expireAt time.Time
	if prev, ok := s.entries[key]; ok && !prev.expired(now) {
		expireAt = prev.expireAt
	} else if fallbackTTL > 0 {
		expireAt = now.Add(fallbackTTL)
	}
	s.entries[key] = memoryEntry{value: value, expireAt: expireAt}
	return nil
}

// sweepLocked drops expired entries. Caller holds the write lock.
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
		}
	}
}

// Close implements the Store interface. Nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}
