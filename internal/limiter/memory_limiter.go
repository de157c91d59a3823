package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter is an in-process alternative to the store-backed
// limiter for storeless single-instance deployments. It uses x/time's
// token bucket per client rather than a fixed window, which smooths the
// limit over time instead of resetting it per window.
type MemoryLimiter struct {
	mu          sync.Mutex
	clients     map[string]*memoryClient
	rps         rate.Limit
	burst       int
	lastCleanup time.Time
}

type memoryClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing limit requests
// per window per client, with bursts up to the full window allowance.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		clients:     make(map[string]*memoryClient),
		rps:         rate.Limit(float64(limit) / window.Seconds()),
		burst:       limit,
		lastCleanup: time.Now(),
	}
}

// Allow implements the Limiter interface.
func (l *MemoryLimiter) Allow(_ context.Context, clientID string) bool {
	return l.getClient(clientID).Allow()
}

// getClient gets or creates the token bucket for a client and
// opportunistically drops buckets idle for 15+ minutes.
func (l *MemoryLimiter) getClient(clientID string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > 5*time.Minute {
		cutoff := now.Add(-15 * time.Minute)
		for id, c := range l.clients {
			if c.lastSeen.Before(cutoff) {
				delete(l.clients, id)
			}
		}
		l.lastCleanup = now
	}

	if c, ok := l.clients[clientID]; ok {
		c.lastSeen = now
		return c.lim
	}

	c := &memoryClient{lim: rate.NewLimiter(l.rps, l.burst), lastSeen: now}
	l.clients[clientID] = c
	return c.lim
}

// Close implements the Limiter interface. Nothing to release.
func (l *MemoryLimiter) Close() error {
	return nil
}
