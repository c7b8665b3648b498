/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package config provides configuration management for sqlshape.

The configuration system supports multiple sources with clear precedence:
 1. Command-line flags (highest priority)
 2. Environment variables
 3. Configuration file
 4. Default values (lowest priority)

Configuration File Format:
The configuration file uses TOML format for readability and ease of use.

Example configuration file:

	# sqlshape Configuration
	schema_file = "schema.sql"
	strict = false
	cache_enabled = true
	cache_size = 1000
	cache_ttl_secs = 300
	workers = 4
	output = "text"      # text or json
	metrics_addr = ""    # e.g. ":9464"; empty disables the endpoint
	log_level = "info"
	log_json = false

Environment Variables:
  - SQLSHAPE_SCHEMA_FILE: Path to the CREATE TABLE schema script
  - SQLSHAPE_STRICT: Fail on unresolved references (true/false)
  - SQLSHAPE_CACHE_ENABLED: Enable the analysis cache (true/false)
  - SQLSHAPE_CACHE_SIZE: Maximum cached analyses
  - SQLSHAPE_CACHE_TTL_SECS: Cache entry lifetime in seconds
  - SQLSHAPE_WORKERS: Concurrent analyses in batch mode
  - SQLSHAPE_OUTPUT: Output format (text, json)
  - SQLSHAPE_METRICS_ADDR: Address for the Prometheus endpoint
  - SQLSHAPE_LOG_LEVEL: Log level (debug, info, warn, error)
  - SQLSHAPE_LOG_JSON: Enable JSON logging (true/false)
  - SQLSHAPE_CONFIG_FILE: Path to configuration file
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	ferrors "sqlshape/internal/errors"
)

// Environment variable names for configuration.
const (
	EnvSchemaFile   = "SQLSHAPE_SCHEMA_FILE"
	EnvStrict       = "SQLSHAPE_STRICT"
	EnvCacheEnabled = "SQLSHAPE_CACHE_ENABLED"
	EnvCacheSize    = "SQLSHAPE_CACHE_SIZE"
	EnvCacheTTLSecs = "SQLSHAPE_CACHE_TTL_SECS"
	EnvWorkers      = "SQLSHAPE_WORKERS"
	EnvOutput       = "SQLSHAPE_OUTPUT"
	EnvMetricsAddr  = "SQLSHAPE_METRICS_ADDR"
	EnvLogLevel     = "SQLSHAPE_LOG_LEVEL"
	EnvLogJSON      = "SQLSHAPE_LOG_JSON"
	EnvConfigFile   = "SQLSHAPE_CONFIG_FILE"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default configuration file paths (searched in order).
var DefaultConfigPaths = []string{
	"/etc/sqlshape/sqlshape.conf",
	"$HOME/.config/sqlshape/sqlshape.conf",
	"./sqlshape.conf",
}

// Config holds all configuration values for sqlshape.
type Config struct {
	// Analysis configuration
	SchemaFile string `toml:"schema_file" json:"schema_file"`
	Strict     bool   `toml:"strict" json:"strict"` // Unresolved references become errors

	// Cache configuration
	CacheEnabled bool `toml:"cache_enabled" json:"cache_enabled"`
	CacheSize    int  `toml:"cache_size" json:"cache_size"`
	CacheTTLSecs int  `toml:"cache_ttl_secs" json:"cache_ttl_secs"`

	// Batch and output configuration
	Workers int    `toml:"workers" json:"workers"`
	Output  string `toml:"output" json:"output"`

	// Metrics endpoint; empty disables it
	MetricsAddr string `toml:"metrics_addr" json:"metrics_addr"`

	// Logging configuration
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`

	// Metadata
	ConfigFile string `toml:"-" json:"-"` // Path to loaded config file
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		SchemaFile:   "",
		Strict:       false,
		CacheEnabled: true,
		CacheSize:    1000,
		CacheTTLSecs: 300,
		Workers:      4,
		Output:       OutputText,
		MetricsAddr:  "",
		LogLevel:     "warn",
		LogJSON:      false,
	}
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// Manager handles configuration loading, validation, and access.
type Manager struct {
	config *Config
	mu     sync.RWMutex

	// Callbacks for configuration changes
	onReload []func(*Config)
}

// NewManager creates a new configuration manager with default values.
func NewManager() *Manager {
	return &Manager{
		config:   DefaultConfig(),
		onReload: make([]func(*Config), 0),
	}
}

// Global manager instance for convenience.
var globalManager = NewManager()

// Global returns the global configuration manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// OnReload registers a callback to be called when configuration is reloaded.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

// notifyReload calls all registered reload callbacks.
func (m *Manager) notifyReload() {
	m.mu.RLock()
	callbacks := make([]func(*Config), len(m.onReload))
	copy(callbacks, m.onReload)
	cfg := *m.config
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn(&cfg)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache_size: %d (must be at least 1)", c.CacheSize))
	}
	if c.CacheTTLSecs < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache_ttl_secs: %d (must be at least 1)", c.CacheTTLSecs))
	}
	if c.Workers < 1 || c.Workers > 1024 {
		errs = append(errs, fmt.Sprintf("invalid workers: %d (must be 1-1024)", c.Workers))
	}

	switch c.Output {
	case OutputText, OutputJSON:
	default:
		errs = append(errs, fmt.Sprintf("invalid output: %s (must be text or json)", c.Output))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return ferrors.ConfigError("configuration", "validation failed:\n  - "+strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoadFromFile loads configuration from a TOML file.
func (m *Manager) LoadFromFile(path string) error {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.Wrap(ferrors.ErrCodeConfig, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := parseTOML(string(data), cfg); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeConfig, "failed to parse config file", err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// This merges with existing configuration (env vars override file values).
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvSchemaFile); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		cfg.Strict = parseBool(v)
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv(EnvCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheSize = n
		}
	}
	if v := os.Getenv(EnvCacheTTLSecs); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTLSecs = n
		}
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = parseBool(v)
	}

	m.Set(cfg)
}

func parseBool(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// FindConfigFile searches for a configuration file in default locations.
// Returns the path to the first file found, or empty string if none found.
func FindConfigFile() string {
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(os.ExpandEnv(envPath)); err == nil {
			return os.ExpandEnv(envPath)
		}
	}

	for _, path := range DefaultConfigPaths {
		expandedPath := os.ExpandEnv(path)
		if _, err := os.Stat(expandedPath); err == nil {
			return expandedPath
		}
	}

	return ""
}

// Load loads configuration from all sources with proper precedence.
// Order: defaults -> config file -> environment variables
// Command-line flags should be applied after calling this function.
func (m *Manager) Load() error {
	if configPath := FindConfigFile(); configPath != "" {
		if err := m.LoadFromFile(configPath); err != nil {
			return err
		}
	}

	m.LoadFromEnv()
	return nil
}

// Reload reloads configuration from file and environment.
func (m *Manager) Reload() error {
	configPath := m.Get().ConfigFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	m.Set(DefaultConfig())

	if configPath != "" {
		if err := m.LoadFromFile(configPath); err != nil {
			return err
		}
	}

	m.LoadFromEnv()
	m.notifyReload()
	return nil
}

// parseTOML is a simple TOML parser for our configuration format.
// It handles flat key = value lines with strings, integers and booleans.
func parseTOML(data string, cfg *Config) error {
	lines := strings.Split(data, "\n")

	for lineNum, line := range lines {
		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: invalid syntax: %s", lineNum+1, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 && ((value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'')) {
			value = value[1 : len(value)-1]
		}

		if err := applyConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
	}

	return nil
}

// stripComment removes a # comment that is not inside a quoted string.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

// applyConfigValue applies a key-value pair to the configuration.
func applyConfigValue(cfg *Config, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %s", key, value)
		}
		return n, nil
	}

	var err error
	switch key {
	case "schema_file":
		cfg.SchemaFile = value
	case "strict":
		cfg.Strict = parseBool(value)
	case "cache_enabled":
		cfg.CacheEnabled = parseBool(value)
	case "cache_size":
		cfg.CacheSize, err = atoi()
	case "cache_ttl_secs":
		cfg.CacheTTLSecs, err = atoi()
	case "workers":
		cfg.Workers, err = atoi()
	case "output":
		cfg.Output = strings.ToLower(value)
	case "metrics_addr":
		cfg.MetricsAddr = value
	case "log_level":
		cfg.LogLevel = value
	case "log_json":
		cfg.LogJSON = parseBool(value)
	default:
		// Ignore unknown keys for forward compatibility
	}
	return err
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("sqlshape Configuration:\n")
	if c.SchemaFile != "" {
		sb.WriteString(fmt.Sprintf("  Schema File:   %s\n", c.SchemaFile))
	}
	sb.WriteString(fmt.Sprintf("  Strict:        %v\n", c.Strict))
	sb.WriteString(fmt.Sprintf("  Cache:         %v (size %d, ttl %ds)\n", c.CacheEnabled, c.CacheSize, c.CacheTTLSecs))
	sb.WriteString(fmt.Sprintf("  Workers:       %d\n", c.Workers))
	sb.WriteString(fmt.Sprintf("  Output:        %s\n", c.Output))
	if c.MetricsAddr != "" {
		sb.WriteString(fmt.Sprintf("  Metrics Addr:  %s\n", c.MetricsAddr))
	}
	sb.WriteString(fmt.Sprintf("  Log Level:     %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  Log JSON:      %v\n", c.LogJSON))
	if c.ConfigFile != "" {
		sb.WriteString(fmt.Sprintf("  Config File:   %s\n", c.ConfigFile))
	}
	return sb.String()
}

// ToTOML returns the configuration as a TOML string.
func (c *Config) ToTOML() string {
	var sb strings.Builder
	sb.WriteString("# sqlshape Configuration File\n")
	sb.WriteString("# Generated by sqlshape\n\n")
	sb.WriteString("# Schema (CREATE TABLE script)\n")
	sb.WriteString(fmt.Sprintf("schema_file = \"%s\"\n\n", c.SchemaFile))
	sb.WriteString("# Treat unresolved tables and columns as errors\n")
	sb.WriteString(fmt.Sprintf("strict = %v\n\n", c.Strict))
	sb.WriteString("# Analysis cache\n")
	sb.WriteString(fmt.Sprintf("cache_enabled = %v\n", c.CacheEnabled))
	sb.WriteString(fmt.Sprintf("cache_size = %d\n", c.CacheSize))
	sb.WriteString(fmt.Sprintf("cache_ttl_secs = %d\n\n", c.CacheTTLSecs))
	sb.WriteString("# Batch analysis\n")
	sb.WriteString(fmt.Sprintf("workers = %d\n", c.Workers))
	sb.WriteString(fmt.Sprintf("output = \"%s\"\n\n", c.Output))
	sb.WriteString("# Prometheus endpoint (empty disables it)\n")
	sb.WriteString(fmt.Sprintf("metrics_addr = \"%s\"\n\n", c.MetricsAddr))
	sb.WriteString("# Logging\n")
	sb.WriteString(fmt.Sprintf("log_level = \"%s\"\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("log_json = %v\n", c.LogJSON))
	return sb.String()
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	path = os.ExpandEnv(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeConfig, "failed to create config directory", err)
	}

	if err := os.WriteFile(path, []byte(c.ToTOML()), 0644); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeConfig, "failed to write config file", err)
	}

	return nil
}
