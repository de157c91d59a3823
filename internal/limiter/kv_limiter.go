package limiter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/store"
)

// keyPrefix namespaces rate-limit counters in the shared key-value store.
const keyPrefix = "rl:"

// KVLimiter bounds request volume per client with a fixed-window
// counter in the key-value store. The window is the TTL attached to the
// counter's first write; later increments overwrite the value with
// KEEPTTL so the timer established at first write governs the reset.
// There is no explicit reset logic; the key expiring is the reset.
// An increment that lands after the key has already expired recreates
// the counter with a fresh window rather than keeping it, otherwise the
// counter would live forever and never reset.
//
// The store offers no atomic increment-and-check, so the read-then-write
// here is racy: two concurrent requests can both read count=59 and both
// be admitted. The limit is a best-effort soft bound, shared across all
// gateway instances pointing at the same store.
type KVLimiter struct {
	store  store.Store
	tasks  *background.Tasks
	limit  int
	window time.Duration
	logger *logger.Logger
}

// NewKVLimiter creates a store-backed fixed-window limiter allowing
// limit requests per window per client.
func NewKVLimiter(s store.Store, tasks *background.Tasks, limit int, window time.Duration, log *logger.Logger) *KVLimiter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &KVLimiter{
		store:  s,
		tasks:  tasks,
		limit:  limit,
		window: window,
		logger: log.WithComponent("limiter"),
	}
}

// Allow implements the Limiter interface.
//
// The counter read is awaited; the increment is scheduled on the
// background scope so the response is not delayed by the write. A store
// read error counts as zero prior requests (fail open).
func (l *KVLimiter) Allow(ctx context.Context, clientID string) bool {
	key := keyPrefix + clientID

	count := 0
	raw, err := l.store.Get(ctx, key)
	if err == nil {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			count = parsed
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		l.logger.Warn().Err(err).Str("client", clientID).Msg("Counter read failed, failing open")
	}

	if count >= l.limit {
		return false
	}

	next := strconv.Itoa(count + 1)
	first := count == 0
	l.tasks.Go(func(ctx context.Context) {
		var err error
		if first {
			// First request of a window: attach the expiry timer.
			err = l.store.Set(ctx, key, next, l.window)
		} else {
			// The window is the fallback: if the key expired between
			// the read and this write, the counter restarts a window
			// instead of being recreated without one.
			err = l.store.SetKeepTTL(ctx, key, next, l.window)
		}
		if err != nil {
			l.logger.Warn().Err(err).Str("client", clientID).Msg("Counter write failed")
		}
	})

	return true
}

// Close implements the Limiter interface. The store is owned by the
// caller and closed there.
func (l *KVLimiter) Close() error {
	return nil
}
