package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestMemoryStore_SetGet tests a round trip
func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "loc:1.1.1.1", "value", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := s.Get(ctx, "loc:1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "value" {
		t.Errorf("expected 'value', got %q", val)
	}
}

// TestMemoryStore_Get_NotFound tests the missing-key sentinel
func TestMemoryStore_Get_NotFound(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestMemoryStore_Expiry tests lazy expiry on read
func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "rl:client", "1", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get(ctx, "rl:client"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}

// TestMemoryStore_SetKeepTTL tests that overwrites keep the original timer
func TestMemoryStore_SetKeepTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "rl:client", "1", 30*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetKeepTTL(ctx, "rl:client", "2", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := s.Get(ctx, "rl:client")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "2" {
		t.Errorf("expected '2', got %q", val)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := s.Get(ctx, "rl:client"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected key to expire on the original timer, got %v", err)
	}
}

// TestMemoryStore_SetKeepTTL_AbsentKey tests that a write with no prior
// TTL to keep attaches the fallback instead of leaving an immortal key
func TestMemoryStore_SetKeepTTL_AbsentKey(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.SetKeepTTL(ctx, "rl:new", "1", 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := s.Get(ctx, "rl:new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "1" {
		t.Errorf("expected '1', got %q", val)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := s.Get(ctx, "rl:new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected key to expire on the fallback timer, got %v", err)
	}
}

// TestMemoryStore_SetKeepTTL_ExpiredKey tests that a write landing after
// expiry restarts the timer rather than keeping the dead one
func TestMemoryStore_SetKeepTTL_ExpiredKey(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "rl:late", "59", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if err := s.SetKeepTTL(ctx, "rl:late", "60", 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, err := s.Get(ctx, "rl:late")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "60" {
		t.Errorf("expected '60', got %q", val)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := s.Get(ctx, "rl:late"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected recreated key to expire on the fallback timer, got %v", err)
	}
}
