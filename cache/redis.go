package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis cache.
type RedisOptions struct {
	// Redis server address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// TLS config.
	TLSConfig *tls.Config
	// TTL of stored entries; 0 keeps them until evicted.
	TTL time.Duration
}

// DefaultRedisOptions returns options for a local server.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Address: "localhost:6379",
		TTL:     24 * time.Hour,
	}
}

// Redis is a cache shared across processes.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis cache. The connection is established lazily.
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		TLSConfig: opts.TLSConfig,
		Addr:      opts.Address,
		Password:  opts.Password,
		DB:        opts.DB,
	})
	return &Redis{client: client, ttl: opts.TTL}
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
