package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Sternrassler/artwork-table/pkg/client"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/artwork-table/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultUserAgent identifies the server to the listing API.
const DefaultUserAgent = "artwork-table/1.0"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Artic: ArticConfig{
			BaseURL:   client.DefaultBaseURL,
			UserAgent: DefaultUserAgent,
			PageSize:  client.DefaultPageSize,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ViewIdleTimeout:   30 * time.Minute,
			BulkRateLimit:     30,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults
//  2. Config file: path if given, else CONFIG_PATH, else DefaultConfigPaths
//  3. Environment variables
//
// An explicitly given path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var envMappings = map[string]string{
	"artic_base_url":      "artic.base_url",
	"user_agent":          "artic.user_agent",
	"page_size":           "artic.page_size",
	"http_addr":           "server.addr",
	"view_idle_timeout":   "server.view_idle_timeout",
	"bulk_rate_limit":     "server.bulk_rate_limit",
	"read_header_timeout": "server.read_header_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"log_level":           "logging.level",
	"log_pretty":          "logging.pretty",
	"log_caller":          "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths, for
// example PAGE_SIZE -> artic.page_size. Unknown variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
