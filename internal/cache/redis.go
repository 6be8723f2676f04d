package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"task-tracker/internal/config"
	"task-tracker/pkg/logger"
)

const countriesCacheKey = "countries:all"

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
// It returns nil when the URL is invalid or the server does not answer.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			_ = c.Close()
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// Slot keeps the task list under one Redis key with no expiry.
type Slot struct {
	rdb *redis.Client
	key string
}

func NewSlot(rdb *redis.Client, key string) *Slot {
	return &Slot{rdb: rdb, key: key}
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return b, nil
}

func (s *Slot) Save(ctx context.Context, b []byte) error {
	if err := s.rdb.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Countries caches the full country catalogue. A nil *Countries or one
// without a client behaves as a permanent miss.
type Countries struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCountries(rdb *redis.Client, ttl time.Duration) *Countries {
	return &Countries{rdb: rdb, ttl: ttl}
}

// Get reads the catalogue. Returns (nil, false) on miss or error.
func (c *Countries) Get(ctx context.Context) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, countriesCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get countries failed", "error", err)
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		logger.Debug(ctx, "Redis unmarshal countries failed", "error", err)
		return nil, false
	}
	return names, true
}

// Set writes the catalogue with the configured TTL.
func (c *Countries) Set(ctx context.Context, names []string) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(names)
	if err != nil {
		logger.Debug(ctx, "Marshal countries for cache failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, countriesCacheKey, b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set countries failed", "error", err)
	}
}
