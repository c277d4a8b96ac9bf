// Package config loads the artwork table server configuration from
// defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full server configuration.
type Config struct {
	Artic   ArticConfig   `koanf:"artic"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// ArticConfig configures the artwork listing client.
type ArticConfig struct {
	// BaseURL is the listing endpoint, queried as {base}?page=N&limit=L.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// UserAgent is sent with every listing request.
	UserAgent string `koanf:"user_agent" validate:"required"`

	// PageSize is the fixed number of rows per page.
	PageSize int `koanf:"page_size" validate:"gt=0,lte=100"`
}

// ServerConfig configures the HTTP server and the view store.
type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`

	// ViewIdleTimeout is how long an untouched view is kept before it is
	// swept. Zero disables sweeping.
	ViewIdleTimeout time.Duration `koanf:"view_idle_timeout" validate:"gte=0"`

	// BulkRateLimit is the number of bulk selections a client IP may submit
	// per minute. Zero disables the limit.
	BulkRateLimit int `koanf:"bulk_rate_limit" validate:"gte=0"`

	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `koanf:"pretty"`
	Caller bool   `koanf:"caller"`
}

var validate = validator.New()

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	return c.validateArtic()
}

// validateArtic enforces an absolute http(s) base URL; the url tag accepts
// any scheme.
func (c *Config) validateArtic() error {
	u, err := url.Parse(c.Artic.BaseURL)
	if err != nil {
		return fmt.Errorf("artic.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("artic.base_url must use http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("artic.base_url must include a host (got %q)", c.Artic.BaseURL)
	}
	return nil
}
