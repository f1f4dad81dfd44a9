package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sigo-api/internal/metrics"
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON documents under string keys. Callers treat every error
// other than ErrMiss as "cache unavailable" and fall back to the database.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	// AddJSON stores value only if key is absent and reports whether it did.
	AddJSON(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	Close() error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client and pings it
func NewRedisCache(ctx context.Context, redisURL string) (Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// If URL parsing fails, try as simple host:port
		opt = &redis.Options{Addr: redisURL}
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (r *redisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return ErrMiss
	}
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	return nil
}

// SetJSON stores a JSON-serializable value in cache
func (r *redisCache) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := r.client.Set(ctx, key, data, expiration).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		return err
	}
	metrics.CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
	return nil
}

// AddJSON stores a JSON-serializable value unless the key already exists
func (r *redisCache) AddJSON(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	added, err := r.client.SetNX(ctx, key, data, expiration).Result()
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("add", "error").Inc()
		return false, err
	}
	if !added {
		metrics.CacheOperationsTotal.WithLabelValues("add", "exists").Inc()
		return false, nil
	}
	metrics.CacheOperationsTotal.WithLabelValues("add", "ok").Inc()
	return true, nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// UserKey is the cache key of a single user document.
func UserKey(id string) string {
	return "user:" + id
}
