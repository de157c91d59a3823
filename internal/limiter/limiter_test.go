package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/store"
)

// allowAndDrain admits one request and waits for the deferred counter
// write, so sequential requests observe each other's increments.
func allowAndDrain(l *KVLimiter, tasks *background.Tasks, clientID string) bool {
	allowed := l.Allow(context.Background(), clientID)
	tasks.Wait()
	return allowed
}

// TestKVLimiter_LimitBoundary tests that request 60 passes and request 61 is rejected
func TestKVLimiter_LimitBoundary(t *testing.T) {
	mockStore := store.NewMockStore()
	tasks := background.New(0)
	l := NewKVLimiter(mockStore, tasks, 60, time.Minute, nil)

	for i := 1; i <= 60; i++ {
		if !allowAndDrain(l, tasks, "203.0.113.7") {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	if allowAndDrain(l, tasks, "203.0.113.7") {
		t.Error("request 61 should be rejected")
	}

	// A rejected request must not mutate the counter.
	if mockStore.Data["rl:203.0.113.7"] != "60" {
		t.Errorf("expected counter to stay at 60, got %q", mockStore.Data["rl:203.0.113.7"])
	}
}

// TestKVLimiter_PerClientIsolation tests that clients have separate windows
func TestKVLimiter_PerClientIsolation(t *testing.T) {
	mockStore := store.NewMockStore()
	tasks := background.New(0)
	l := NewKVLimiter(mockStore, tasks, 2, time.Minute, nil)

	allowAndDrain(l, tasks, "10.0.0.1")
	allowAndDrain(l, tasks, "10.0.0.1")

	if allowAndDrain(l, tasks, "10.0.0.1") {
		t.Error("first client should be rate limited")
	}
	if !allowAndDrain(l, tasks, "10.0.0.2") {
		t.Error("second client should be unaffected")
	}
}

// TestKVLimiter_FailOpen tests that a store outage admits requests
func TestKVLimiter_FailOpen(t *testing.T) {
	mockStore := store.NewMockStore()
	mockStore.GetError = context.DeadlineExceeded
	tasks := background.New(0)
	l := NewKVLimiter(mockStore, tasks, 1, time.Minute, nil)

	// Every read fails, so every request sees "0 requests so far".
	for i := 0; i < 5; i++ {
		if !allowAndDrain(l, tasks, "10.0.0.1") {
			t.Fatal("expected fail-open admission during store outage")
		}
	}
}

// TestKVLimiter_WindowExpiry tests the fixed TTL window against real Redis semantics
func TestKVLimiter_WindowExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisStore, err := store.NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	tasks := background.New(0)
	l := NewKVLimiter(redisStore, tasks, 2, time.Minute, nil)

	allowAndDrain(l, tasks, "10.0.0.1")

	// Half-way through the window the client keeps its counter...
	mr.FastForward(30 * time.Second)
	allowAndDrain(l, tasks, "10.0.0.1")
	if allowAndDrain(l, tasks, "10.0.0.1") {
		t.Error("expected rejection within the window")
	}

	// ...and the second increment must not have extended the window:
	// the timer attached to the first write governs the reset.
	mr.FastForward(31 * time.Second)
	if !allowAndDrain(l, tasks, "10.0.0.1") {
		t.Error("expected a fresh window after the original TTL expired")
	}
}

// TestKVLimiter_LateWriteAfterExpiry tests the window boundary: an
// increment that lands after the counter's TTL has lapsed must start a
// fresh window, not recreate the counter without an expiry. A counter
// with no TTL never resets and would reject the client forever.
func TestKVLimiter_LateWriteAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisStore, err := store.NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	tasks := background.New(0)
	l := NewKVLimiter(redisStore, tasks, 60, time.Minute, nil)
	ctx := context.Background()

	// A client one request short of the limit, mid-window.
	if err := redisStore.Set(ctx, "rl:10.0.0.1", "59", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The window lapses, then the deferred increment for an earlier
	// admission lands on the now-expired key.
	mr.FastForward(61 * time.Second)
	if err := redisStore.SetKeepTTL(ctx, "rl:10.0.0.1", "60", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ttl := mr.TTL("rl:10.0.0.1"); ttl <= 0 {
		t.Fatalf("late write left the counter without a TTL: %v", ttl)
	}

	// The recreated counter is at the limit for its new window...
	if allowAndDrain(l, tasks, "10.0.0.1") {
		t.Error("expected rejection while the recreated window is active")
	}

	// ...but that window expires like any other and the client recovers.
	mr.FastForward(61 * time.Second)
	if !allowAndDrain(l, tasks, "10.0.0.1") {
		t.Error("expected admission after the recreated window expired")
	}
}

// TestMemoryLimiter_Basic tests the in-process token bucket backend
func TestMemoryLimiter_Basic(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	defer l.Close()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if !l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow(ctx, "10.0.0.1") {
		t.Error("request past the burst should be rejected")
	}
	if !l.Allow(ctx, "10.0.0.2") {
		t.Error("other clients should be unaffected")
	}
}

// TestNewLimiter_Factory tests backend selection
func TestNewLimiter_Factory(t *testing.T) {
	tasks := background.New(0)
	mockStore := store.NewMockStore()

	tests := []struct {
		name        string
		limiterType string
		wantErr     bool
	}{
		{"kv", "kv", false},
		{"default is kv", "", false},
		{"memory", "memory", false},
		{"unknown", "bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLimiter(LimiterConfig{
				Type:   tt.limiterType,
				Limit:  60,
				Window: time.Minute,
				Store:  mockStore,
				Tasks:  tasks,
			}, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			l.Close()
		})
	}
}

// TestNewLimiter_KVRequiresStore tests the kv dependency check
func TestNewLimiter_KVRequiresStore(t *testing.T) {
	if _, err := NewLimiter(LimiterConfig{Type: "kv", Limit: 60, Window: time.Minute}, nil); err == nil {
		t.Error("expected error for kv limiter without a store")
	}
}
