package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gribsnap/internal/platform/obs"
)

// DefaultTTL bounds how long a rendered collection stays in Redis.
const DefaultTTL = 24 * time.Hour

// RedisCache keeps payloads as plain string values.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

// OpenRedis parses a redis:// URL and checks the server answers.
func OpenRedis(ctx context.Context, url string) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis cache: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open redis cache: ping: %w", err)
	}
	return NewRedisCache(client, DefaultTTL), nil
}

// Get returns the payload for key or ErrMiss.
func (s *RedisCache) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, "cache.redis.Get")(&err)

	b, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get render cache key=%q: %w", key, err)
	}
	return b, nil
}

// Put stores the payload with the cache TTL (0 keeps it forever).
func (s *RedisCache) Put(ctx context.Context, key string, payload []byte) (err error) {
	defer obs.Time(ctx, "cache.redis.Put")(&err)

	if err := s.Client.Set(ctx, key, payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("insert render cache key=%q: %w", key, err)
	}
	return nil
}

func (s *RedisCache) Close() error { return s.Client.Close() }
