// Package problemcache fronts the problem store with Redis and fills empty
// keys from a generator, one fill per key at a time.
package problemcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
)

const (
	keyPrefix  = "kinderpath:problems:"
	DefaultTTL = 10 * time.Minute
)

// FillFunc produces problems for a key with nothing cached.
type FillFunc func(ctx context.Context) ([]store.Problem, error)

// Cache is a read-through cache over a store.ProblemRepo. Without Redis it
// reads the store directly.
type Cache struct {
	repo    store.ProblemRepo
	rdb     redis.UniversalClient
	ttl     time.Duration
	group   singleflight.Group
	log     *logger.Logger
	metrics *telemetry.Metrics
}

type Option func(*Cache)

// WithRedis enables the Redis layer; a nil client leaves it off.
func WithRedis(rdb redis.UniversalClient, ttl time.Duration) Option {
	return func(c *Cache) {
		c.rdb = rdb
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.log = logger.OrNop(l) }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func New(repo store.ProblemRepo, opts ...Option) *Cache {
	c := &Cache{repo: repo, ttl: DefaultTTL, log: logger.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewRedisClient connects to cfg.Addr. An empty address returns nil.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func redisKey(key store.ProblemKey) string { return keyPrefix + key.String() }

// Get returns the cached problems for key in insertion order. Redis
// failures fall back to the store.
func (c *Cache) Get(ctx context.Context, key store.ProblemKey) ([]store.Problem, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
		switch {
		case err == nil:
			var problems []store.Problem
			if jerr := json.Unmarshal(raw, &problems); jerr == nil {
				c.metrics.CacheResult("hit")
				return problems, nil
			}
			c.log.Warn("dropping undecodable cache entry", "key", key.String())
		case errors.Is(err, redis.Nil):
		default:
			c.metrics.CacheResult("error")
			c.log.Warn("redis get failed", "key", key.String(), "error", err)
		}
	}
	c.metrics.CacheResult("miss")

	problems, err := c.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil && len(problems) > 0 {
		if raw, jerr := json.Marshal(problems); jerr == nil {
			if serr := c.rdb.Set(ctx, redisKey(key), raw, c.ttl).Err(); serr != nil {
				c.log.Warn("redis set failed", "key", key.String(), "error", serr)
			}
		}
	}
	return problems, nil
}

// Put stores problems and invalidates their keys.
func (c *Cache) Put(ctx context.Context, problems []store.Problem) error {
	keys := make(map[store.ProblemKey]bool)
	for i := range problems {
		if err := c.repo.Put(ctx, &problems[i]); err != nil {
			return err
		}
		keys[problems[i].Key()] = true
	}
	if c.rdb == nil {
		return nil
	}
	for k := range keys {
		if err := c.rdb.Del(ctx, redisKey(k)).Err(); err != nil {
			c.log.Warn("redis invalidate failed", "key", k.String(), "error", err)
		}
	}
	return nil
}

// GetOrFill returns the cached problems for key, calling fill when there
// are none. Concurrent callers for the same key share one fill.
func (c *Cache) GetOrFill(ctx context.Context, key store.ProblemKey, fill FillFunc) ([]store.Problem, error) {
	problems, err := c.Get(ctx, key)
	if err != nil || len(problems) > 0 || fill == nil {
		return problems, err
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		again, err := c.repo.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(again) > 0 {
			return again, nil
		}
		fresh, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Put(ctx, fresh); err != nil {
			return nil, err
		}
		c.metrics.CacheResult("fill")
		c.log.Info("filled problem cache", "key", key.String(), "count", len(fresh))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug("shared problem cache fill", "key", key.String())
	}
	// Callers may reorder their slice; never hand out the shared backing array.
	return append([]store.Problem(nil), v.([]store.Problem)...), nil
}
