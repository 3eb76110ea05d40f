package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

const escapedDollar = "\x00ESCAPED_DOLLAR\x00"

// LoadConfig loads configuration from a file path and applies defaults.
func LoadConfig(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return parseConfig(data)
}

// LoadConfigFromReader loads configuration from an io.Reader and applies
// defaults.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", escapedDollar)

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(sub[1]); ok {
			return value
		}
		return sub[2]
	})

	return strings.ReplaceAll(result, escapedDollar, "$")
}
