package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// tracerName is the OpenTelemetry tracer name for cache operations.
const tracerName = "pathsupport/cache"

// Common cache errors.
var (
	// ErrCacheMiss indicates that the key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled indicates that caching is disabled.
	ErrCacheDisabled = errors.New("cache disabled")

	// ErrInvalidConfig indicates that the cache configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// Cache stores byte values by key.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss if the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero TTL uses the cache's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Clear removes every value.
	Clear(ctx context.Context) error

	// Stats returns hit and miss counters.
	Stats() Stats

	// Close releases the cache's resources.
	Close() error
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64

	// Size is the number of entries, if the backend knows it.
	Size int64
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// New creates a cache from configuration.
func New(cfg *config.CacheConfig, logger observability.Logger) (Cache, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if !cfg.Enabled {
		return nil, ErrCacheDisabled
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	switch cfg.Type {
	case config.CacheTypeMemory, "":
		return newMemoryCache(cfg.MaxEntries, cfg.TTL.Duration(), logger), nil
	case config.CacheTypeRedis:
		return newRedisCache(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown cache type %q", ErrInvalidConfig, cfg.Type)
	}
}
