// Package cache provides the byte caches behind the page cache: an
// in-memory LRU and a Redis backend. Both honor per-entry TTLs and
// report hits and misses through Stats.
package cache
