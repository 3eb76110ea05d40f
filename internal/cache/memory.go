package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// DefaultMaxEntries bounds the memory cache when no limit is configured.
const DefaultMaxEntries = 1000

// memoryCache is an in-memory LRU cache.
type memoryCache struct {
	logger     observability.Logger
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
	hits     int64
	misses   int64
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func newMemoryCache(maxEntries int, defaultTTL time.Duration, logger observability.Logger) *memoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	logger.Info("memory cache initialized",
		observability.Int("maxEntries", maxEntries),
		observability.Duration("defaultTTL", defaultTTL))

	return &memoryCache{
		logger:     logger,
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		eviction:   list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "cache.Get",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("cache.backend", "memory")),
	)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		entry := elem.Value.(*memoryEntry)
		if entry.expiresAt.IsZero() || c.now().Before(entry.expiresAt) {
			c.eviction.MoveToFront(elem)
			c.hits++
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return entry.value, nil
		}
		c.removeElement(elem)
	}

	c.misses++
	span.SetAttributes(attribute.Bool("cache.hit", false))
	return nil, ErrCacheMiss
}

// Set stores a value in the cache, evicting the least recently used
// entries beyond the size limit.
func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "cache.Set",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.backend", "memory"),
			attribute.Int("cache.value_size", len(value)),
		),
	)
	defer span.End()

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &memoryEntry{key: key, value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.eviction.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.eviction.PushFront(entry)
	for c.eviction.Len() > c.maxEntries {
		c.removeElement(c.eviction.Back())
		c.logger.Debug("cache evicted oldest entry")
	}
	return nil
}

// Delete removes a value from the cache.
func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries.
func (c *memoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	return nil
}

// Stats returns cache statistics.
func (c *memoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Hits: c.hits, Misses: c.misses, Size: int64(c.eviction.Len())}
}

// Close drops all entries.
func (c *memoryCache) Close() error {
	return c.Clear(context.Background())
}

// removeElement must be called with the lock held.
func (c *memoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*memoryEntry).key)
}
