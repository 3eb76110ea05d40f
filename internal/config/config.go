package config

import (
	"time"
)

// Cache backend types.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// LinkCanonical is the link template relation of an entity's canonical
// (human-facing) path.
const LinkCanonical = "canonical"

// Config is the root configuration document.
type Config struct {
	Server         ServerConfig         `yaml:"server" json:"server"`
	Logging        LoggingConfig        `yaml:"logging" json:"logging"`
	Tracing        TracingConfig        `yaml:"tracing" json:"tracing"`
	Metrics        MetricsConfig        `yaml:"metrics" json:"metrics"`
	Storage        StorageConfig        `yaml:"storage" json:"storage"`
	JSONAPI        JSONAPIConfig        `yaml:"jsonapi" json:"jsonapi"`
	EntityTypes    []EntityTypeConfig   `yaml:"entityTypes" json:"entityTypes" validate:"dive"`
	Cache          CacheConfig          `yaml:"cache" json:"cache"`
	RateLimit      RateLimitConfig      `yaml:"rateLimit" json:"rateLimit"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`
	Fixtures       []FixtureConfig      `yaml:"fixtures,omitempty" json:"fixtures,omitempty" validate:"dive"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address" json:"address" validate:"required,listen_addr"`
	ReadTimeout     Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	MaxHeaderBytes  int      `yaml:"maxHeaderBytes" json:"maxHeaderBytes" validate:"gte=0"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json console"`
	Output string `yaml:"output" json:"output" validate:"omitempty,oneof=stdout stderr"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"omitempty,startswith=/"`
}

// StorageConfig configures the entity store.
type StorageConfig struct {
	// DSN is the sqlite database path. ":memory:" keeps data in memory.
	DSN string `yaml:"dsn" json:"dsn" validate:"required"`
}

// JSONAPIConfig configures the JSON:API resource endpoints.
type JSONAPIConfig struct {
	BasePath      string               `yaml:"basePath" json:"basePath" validate:"required,startswith=/"`
	ResourceTypes []ResourceTypeConfig `yaml:"resourceTypes,omitempty" json:"resourceTypes,omitempty" validate:"dive"`
}

// ResourceTypeConfig overrides the resource type name of one bundle.
type ResourceTypeConfig struct {
	EntityType string `yaml:"entityType" json:"entityType" validate:"required"`
	Bundle     string `yaml:"bundle" json:"bundle" validate:"required"`
	Name       string `yaml:"name" json:"name" validate:"required"`
}

// EntityTypeConfig declares one entity type of the catalog.
type EntityTypeConfig struct {
	ID      string   `yaml:"id" json:"id" validate:"required"`
	Label   string   `yaml:"label" json:"label"`
	Bundles []string `yaml:"bundles" json:"bundles" validate:"required,min=1,dive,required"`

	// LinkTemplates maps a link relation (e.g. "canonical") to a path
	// template such as "/node/{node}".
	LinkTemplates map[string]string `yaml:"linkTemplates,omitempty" json:"linkTemplates,omitempty"`
}

// CacheConfig configures the page cache.
type CacheConfig struct {
	Enabled    bool              `yaml:"enabled" json:"enabled"`
	Type       string            `yaml:"type" json:"type" validate:"omitempty,oneof=memory redis"`
	TTL        Duration          `yaml:"ttl" json:"ttl"`
	MaxEntries int               `yaml:"maxEntries" json:"maxEntries" validate:"gte=0"`
	Redis      *RedisCacheConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisCacheConfig contains Redis-specific cache configuration.
type RedisCacheConfig struct {
	// URL format: redis://[user:password@]host:port[/db]
	URL          string   `yaml:"url" json:"url" validate:"required"`
	KeyPrefix    string   `yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`
	PoolSize     int      `yaml:"poolSize,omitempty" json:"poolSize,omitempty" validate:"gte=0"`
	DialTimeout  Duration `yaml:"dialTimeout,omitempty" json:"dialTimeout,omitempty"`
	ReadTimeout  Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// ConnectAttempts is the number of connection attempts at startup.
	ConnectAttempts int      `yaml:"connectAttempts,omitempty" json:"connectAttempts,omitempty" validate:"gte=0"`
	ConnectBackoff  Duration `yaml:"connectBackoff,omitempty" json:"connectBackoff,omitempty"`
}

// RateLimitConfig configures the global token bucket limiter.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond" json:"requestsPerSecond" validate:"gte=0"`
	Burst             int  `yaml:"burst" json:"burst" validate:"gte=0"`
}

// CircuitBreakerConfig configures the breaker around sub-request dispatch.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Threshold is the number of consecutive 5xx responses that opens the
	// breaker.
	Threshold   int      `yaml:"threshold" json:"threshold" validate:"gte=0"`
	Timeout     Duration `yaml:"timeout" json:"timeout"`
	HalfOpenMax int      `yaml:"halfOpenRequests" json:"halfOpenRequests" validate:"gte=0"`
}

// FixtureConfig is an entity created at startup when the store has no
// entity with the same type and UUID.
type FixtureConfig struct {
	EntityType string         `yaml:"entityType" json:"entityType" validate:"required"`
	Bundle     string         `yaml:"bundle" json:"bundle" validate:"required"`
	UUID       string         `yaml:"uuid,omitempty" json:"uuid,omitempty" validate:"omitempty,uuid"`
	Label      string         `yaml:"label" json:"label"`
	Fields     map[string]any `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// CanonicalTemplate returns the canonical link template of the entity
// type, if it declares one.
func (e EntityTypeConfig) CanonicalTemplate() (string, bool) {
	tmpl, ok := e.LinkTemplates[LinkCanonical]
	return tmpl, ok && tmpl != ""
}

// DefaultConfig returns a configuration with defaults applied and no
// entity types.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(30 * time.Second)
	}
	if c.Server.MaxHeaderBytes == 0 {
		c.Server.MaxHeaderBytes = 1 << 20
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "pathsupport"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Storage.DSN == "" {
		c.Storage.DSN = ":memory:"
	}

	if c.JSONAPI.BasePath == "" {
		c.JSONAPI.BasePath = "/jsonapi"
	}

	if c.Cache.Type == "" {
		c.Cache.Type = CacheTypeMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(5 * time.Minute)
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1000
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerSecond
	}

	if c.CircuitBreaker.Threshold == 0 {
		c.CircuitBreaker.Threshold = 5
	}
	if c.CircuitBreaker.Timeout == 0 {
		c.CircuitBreaker.Timeout = Duration(30 * time.Second)
	}
	if c.CircuitBreaker.HalfOpenMax == 0 {
		c.CircuitBreaker.HalfOpenMax = 1
	}
}
