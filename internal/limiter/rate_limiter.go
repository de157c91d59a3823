package limiter

import "context"

// Limiter is the admission-control interface for per-client rate
// limiting. Implementations must fail open: an unavailable backend is
// treated as "no requests so far", never as a reason to reject.
type Limiter interface {
	// Allow reports whether a request from the given client should be
	// admitted. Admitting a request counts it against the client's
	// window; a rejected request mutates no state.
	Allow(ctx context.Context, clientID string) bool

	// Close cleans up any resources (store connections, goroutines, etc.)
	Close() error
}
