package limiter

import (
	"fmt"
	"strings"
	"time"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/store"
)

// LimiterConfig holds configuration for creating a rate limiter
type LimiterConfig struct {
	Type   string        // "kv" or "memory"
	Limit  int           // requests allowed per window per client
	Window time.Duration // window length

	// kv-specific dependencies
	Store store.Store
	Tasks *background.Tasks
}

// NewLimiter creates a rate limiter based on the configuration (factory pattern)
func NewLimiter(cfg LimiterConfig, log *logger.Logger) (Limiter, error) {
	limiterType := strings.ToLower(strings.TrimSpace(cfg.Type))

	switch limiterType {
	case "kv", "":
		// Store-backed fixed window: limits are shared across gateway
		// instances pointing at the same store.
		if cfg.Store == nil || cfg.Tasks == nil {
			return nil, fmt.Errorf("kv limiter requires a store and a task scope")
		}
		return NewKVLimiter(cfg.Store, cfg.Tasks, cfg.Limit, cfg.Window, log), nil

	case "memory":
		// In-process token bucket for storeless deployments.
		return NewMemoryLimiter(cfg.Limit, cfg.Window), nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'kv', 'memory')", cfg.Type)
	}
}
