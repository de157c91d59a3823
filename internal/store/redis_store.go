package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis, the production backend.
// Redis gives us the two TTL behaviors the gateway relies on: expiry
// attached at write time, and KEEPTTL overwrites for counter updates.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get implements the Store interface.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set implements the Store interface.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// SetKeepTTL implements the Store interface using SET with KEEPTTL and
// XX, so an expiry set by an earlier Set survives the overwrite. XX
// refuses the write when the key has already expired; in that case the
// value is written fresh with fallbackTTL. A bare KEEPTTL write on an
// absent key would leave a key with no expiry at all.
func (s *RedisStore) SetKeepTTL(ctx context.Context, key, value string, fallbackTTL time.Duration) error {
	ok, err := s.client.SetXX(ctx, key, value, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis set keepttl failed: %w", err)
	}
	if !ok {
		if err := s.client.Set(ctx, key, value, fallbackTTL).Err(); err != nil {
			return fmt.Errorf("redis set failed: %w", err)
		}
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
