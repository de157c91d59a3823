package background

import (
	"context"
	"sync"
	"time"
)

// Tasks is a structured scope for writes that must not delay an HTTP
// response but must still complete before the process exits: cache fills
// and rate-limit counter increments. Handlers schedule work with Go and
// return immediately; the server drains the scope with Wait on shutdown.
//
// Each task gets its own context detached from the request (the request
// context is canceled when the response is written) but bounded by a
// timeout so a hung store write cannot block shutdown forever.
type Tasks struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

// New creates a task scope. Each scheduled task is given at most
// timeout to complete; 0 means no per-task deadline.
func New(timeout time.Duration) *Tasks {
	return &Tasks{timeout: timeout}
}

// Go schedules fn on its own goroutine, registered with the scope.
// Errors are the task's own concern: deferred writes are best-effort
// and must never surface to the request that scheduled them.
func (t *Tasks) Go(fn func(ctx context.Context)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx := context.Background()
		if t.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}
		fn(ctx)
	}()
}

// Wait blocks until every scheduled task has finished.
func (t *Tasks) Wait() {
	t.wg.Wait()
}
