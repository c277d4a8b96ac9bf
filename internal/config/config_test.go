package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp runs the test from an empty directory so no config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Artic.BaseURL != "https://api.artic.edu/api/v1/artworks" {
		t.Errorf("Artic.BaseURL = %q", cfg.Artic.BaseURL)
	}
	if cfg.Artic.PageSize != 12 {
		t.Errorf("Artic.PageSize = %d, want 12", cfg.Artic.PageSize)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ViewIdleTimeout != 30*time.Minute {
		t.Errorf("Server.ViewIdleTimeout = %v, want 30m", cfg.Server.ViewIdleTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Artic.PageSize != 12 || cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `
artic:
  page_size: 20
  user_agent: test-agent/0.1
server:
  addr: ":9090"
  view_idle_timeout: 5m
logging:
  level: debug
  pretty: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Artic.PageSize != 20 {
		t.Errorf("Artic.PageSize = %d, want 20", cfg.Artic.PageSize)
	}
	if cfg.Artic.UserAgent != "test-agent/0.1" {
		t.Errorf("Artic.UserAgent = %q", cfg.Artic.UserAgent)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.ViewIdleTimeout != 5*time.Minute {
		t.Errorf("Server.ViewIdleTimeout = %v, want 5m", cfg.Server.ViewIdleTimeout)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Pretty {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Untouched values keep their defaults.
	if cfg.Artic.BaseURL != "https://api.artic.edu/api/v1/artworks" {
		t.Errorf("Artic.BaseURL = %q", cfg.Artic.BaseURL)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "from-env.yaml")
	if err := os.WriteFile(path, []byte("artic:\n  page_size: 7\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Artic.PageSize != 7 {
		t.Errorf("Artic.PageSize = %d, want 7", cfg.Artic.PageSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("artic:\n  page_size: 20\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("PAGE_SIZE", "15")
	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")
	t.Setenv("ARTIC_BASE_URL", "http://localhost:1234/api/v1/artworks")
	t.Setenv("VIEW_IDLE_TIMEOUT", "90s")
	t.Setenv("BULK_RATE_LIMIT", "0")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Artic.PageSize != 15 {
		t.Errorf("Artic.PageSize = %d, want 15", cfg.Artic.PageSize)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Artic.BaseURL != "http://localhost:1234/api/v1/artworks" {
		t.Errorf("Artic.BaseURL = %q", cfg.Artic.BaseURL)
	}
	if cfg.Server.ViewIdleTimeout != 90*time.Second {
		t.Errorf("Server.ViewIdleTimeout = %v, want 90s", cfg.Server.ViewIdleTimeout)
	}
	if cfg.Server.BulkRateLimit != 0 {
		t.Errorf("Server.BulkRateLimit = %d, want 0", cfg.Server.BulkRateLimit)
	}
	if cfg.Logging.Level != "warn" || !cfg.Logging.Pretty {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)

	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("PAGE_SIZE", "0")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "PageSize") {
		t.Errorf("Load() error = %v, want PageSize validation error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty base url", func(c *Config) { c.Artic.BaseURL = "" }, "BaseURL"},
		{"relative base url", func(c *Config) { c.Artic.BaseURL = "/api/v1/artworks" }, "BaseURL"},
		{"ftp base url", func(c *Config) { c.Artic.BaseURL = "ftp://example.com/artworks" }, "http or https"},
		{"empty user agent", func(c *Config) { c.Artic.UserAgent = "" }, "UserAgent"},
		{"zero page size", func(c *Config) { c.Artic.PageSize = 0 }, "PageSize"},
		{"huge page size", func(c *Config) { c.Artic.PageSize = 1000 }, "PageSize"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "Addr"},
		{"negative idle timeout", func(c *Config) { c.Server.ViewIdleTimeout = -time.Second }, "ViewIdleTimeout"},
		{"negative rate limit", func(c *Config) { c.Server.BulkRateLimit = -1 }, "BulkRateLimit"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "Level"},
		{"upper case level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PAGE_SIZE":      "artic.page_size",
		"ARTIC_BASE_URL": "artic.base_url",
		"HTTP_ADDR":      "server.addr",
		"LOG_LEVEL":      "logging.level",
		"HOME":           "",
		"PATH":           "",
	}

	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
