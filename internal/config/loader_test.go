package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  address: ":9090"
  readTimeout: 5s
logging:
  level: debug
jsonapi:
  basePath: /api
  resourceTypes:
    - entityType: node
      bundle: article
      name: articles
entityTypes:
  - id: node
    label: Content
    bundles: [article, news]
    linkTemplates:
      canonical: /node/{node}
  - id: file
    bundles: [file]
cache:
  enabled: true
  ttl: 1m
`

func TestLoadConfigFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/api", cfg.JSONAPI.BasePath)
	require.Len(t, cfg.EntityTypes, 2)

	tmpl, ok := cfg.EntityTypes[0].CanonicalTemplate()
	assert.True(t, ok)
	assert.Equal(t, "/node/{node}", tmpl)

	_, ok = cfg.EntityTypes[1].CanonicalTemplate()
	assert.False(t, ok)

	assert.Equal(t, CacheTypeMemory, cfg.Cache.Type)
	assert.Equal(t, time.Minute, cfg.Cache.TTL.Duration())

	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigFromReader_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromReader(strings.NewReader("servr:\n  address: x\n"))
	assert.Error(t, err)
}

func TestLoadConfigFromReader_BadDuration(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromReader(strings.NewReader("server:\n  readTimeout: soon\n"))
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("PATHSUPPORT_TEST_ADDR", ":7070")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "set", input: "a: ${PATHSUPPORT_TEST_ADDR}", expected: "a: :7070"},
		{name: "default ignored when set", input: "a: ${PATHSUPPORT_TEST_ADDR:-:1}", expected: "a: :7070"},
		{name: "default", input: "a: ${PATHSUPPORT_TEST_UNSET:-fallback}", expected: "a: fallback"},
		{name: "unset no default", input: "a: ${PATHSUPPORT_TEST_UNSET}", expected: "a: "},
		{name: "escaped", input: "a: $${NOT_A_VAR}", expected: "a: ${NOT_A_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, substituteEnvVars(tt.input))
		})
	}
}
