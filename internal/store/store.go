package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
// Callers on the request path treat it (and any other store error) as
// "no prior state" rather than failing the request.
var ErrNotFound = errors.New("key not found")

// Store is the TTL-capable key-value interface backing the result cache
// and the rate-limit counters. It is the sole owner of cross-request
// state; the gateway keeps no mutable memory between requests.
//
// Get and Set are atomic per key. There is no atomic increment: the
// rate limiter's read-then-write is knowingly racy (see limiter docs).
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key with the given lifetime.
	// A ttl of 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetKeepTTL overwrites the value under key without touching an
	// existing expiry timer. If the key is absent or already expired,
	// the value is written with fallbackTTL instead, so a write that
	// lands late never produces a key with no expiry. Used by the rate
	// limiter so the window established at first write governs the
	// reset, and a counter recreated after expiry starts a fresh window.
	SetKeepTTL(ctx context.Context, key, value string, fallbackTTL time.Duration) error

	// Close releases underlying resources (connections, etc.)
	Close() error
}
