package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/retry"
)

// DefaultKeyPrefix prefixes Redis keys when no prefix is configured.
const DefaultKeyPrefix = "pathsupport:"

const redisPingTimeout = 5 * time.Second

// redisCache is a Redis-backed cache.
type redisCache struct {
	logger     observability.Logger
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func newRedisCache(cfg *config.CacheConfig, logger observability.Logger) (*redisCache, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("%w: redis URL is required", ErrInvalidConfig)
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis URL: %w", ErrInvalidConfig, err)
	}
	if cfg.Redis.PoolSize > 0 {
		opts.PoolSize = cfg.Redis.PoolSize
	}
	if d := cfg.Redis.DialTimeout.Duration(); d > 0 {
		opts.DialTimeout = d
	}
	if d := cfg.Redis.ReadTimeout.Duration(); d > 0 {
		opts.ReadTimeout = d
	}
	if d := cfg.Redis.WriteTimeout.Duration(); d > 0 {
		opts.WriteTimeout = d
	}

	client := redis.NewClient(opts)

	connect := retry.Config{
		Attempts:       cfg.Redis.ConnectAttempts,
		InitialBackoff: cfg.Redis.ConnectBackoff.Duration(),
		Jitter:         retry.DefaultJitter,
	}
	err = retry.Do(context.Background(), connect, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}, retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
		logger.Warn("redis not reachable, retrying",
			observability.Int("attempt", attempt),
			observability.Duration("backoff", wait),
			observability.Error(err))
	}))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	keyPrefix := cfg.Redis.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	logger.Info("redis cache initialized",
		observability.String("addr", opts.Addr),
		observability.String("keyPrefix", keyPrefix),
		observability.Duration("defaultTTL", cfg.TTL.Duration()))

	return &redisCache{
		logger:     logger,
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: cfg.TTL.Duration(),
	}, nil
}

// resolveKey prefixes the key, hashing keys too long to store verbatim.
func (c *redisCache) resolveKey(key string) string {
	if len(key) > maxKeyLength {
		return c.keyPrefix + HashKey(key)
	}
	return c.keyPrefix + key
}

func (c *redisCache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("cache.backend", "redis")),
	)
}

// Get retrieves a value from the cache.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := c.startSpan(ctx, "cache.Get")
	defer span.End()

	val, err := c.client.Get(ctx, c.resolveKey(key)).Bytes()
	switch {
	case err == nil:
		c.hits.Add(1)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, ErrCacheMiss
	default:
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithContext(ctx).Error("redis get failed", observability.Error(err))
		return nil, err
	}
}

// Set stores a value in the cache.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := c.startSpan(ctx, "cache.Set")
	defer span.End()

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, c.resolveKey(key), value, ttl).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithContext(ctx).Error("redis set failed", observability.Error(err))
		return err
	}
	return nil
}

// Delete removes a value from the cache.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	ctx, span := c.startSpan(ctx, "cache.Delete")
	defer span.End()

	if err := c.client.Del(ctx, c.resolveKey(key)).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// clearBatchSize is the SCAN count and DEL batch size of Clear.
const clearBatchSize = 100

// Clear deletes every key under the cache's prefix.
func (c *redisCache) Clear(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "cache.Clear")
	defer span.End()

	var (
		keys    []string
		deleted int
	)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
		deleted += len(keys)
		keys = keys[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", clearBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= clearBatchSize {
			if err := flush(); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return err
			}
		}
	}
	err := iter.Err()
	if err == nil {
		err = flush()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithContext(ctx).Error("redis clear failed", observability.Error(err))
		return err
	}

	span.SetAttributes(attribute.Int("cache.deleted", deleted))
	return nil
}

// Stats returns cache statistics. Size is not tracked.
func (c *redisCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close closes the Redis client.
func (c *redisCache) Close() error {
	return c.client.Close()
}
