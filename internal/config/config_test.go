package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskly-dev/taskly/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
	if cfg.IdleTimeout() != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 30m", cfg.IdleTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `{
  "addr": ":8080",
  "apiBaseURL": "https://api.example.com/v1/",
  "instances": {"idleTimeout": "5m"},
  "mockAPI": {"delay": "1s"}
}
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.APIBaseURL != "https://api.example.com/v1/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.IdleTimeout() != 5*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 5m", cfg.IdleTimeout())
	}
	if cfg.MockDelay() != time.Second {
		t.Errorf("MockDelay() = %v, want 1s", cfg.MockDelay())
	}
	// Unset fields keep their defaults.
	if cfg.Instances.Max != 10000 {
		t.Errorf("Instances.Max = %d, want 10000", cfg.Instances.Max)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `{"addr": `)

	_, err := Load(dir)
	if !errors.HasCode(err, errors.CodeConfig) {
		t.Errorf("expected T300, got %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `{"addr": ":1111", "apiBaseURL": "http://file/", "logLevel": "warn"}`)
	writeFile(t, dir, EnvFileName, "TASKLY_ADDR=:2222\nTASKLY_API_BASE_URL=http://dotenv/\n")
	t.Setenv("TASKLY_ADDR", ":3333")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"environment beats .env", cfg.Addr, ":3333"},
		{".env beats file", cfg.APIBaseURL, "http://dotenv/"},
		{"file beats defaults", cfg.LogLevel, "warn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestLoadEnvTypes(t *testing.T) {
	t.Setenv("TASKLY_DEV", "true")
	t.Setenv("TASKLY_MAX_INSTANCES", "42")
	t.Setenv("TASKLY_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Dev {
		t.Error("Dev should be true")
	}
	if cfg.Instances.Max != 42 {
		t.Errorf("Instances.Max = %d, want 42", cfg.Instances.Max)
	}
	if len(cfg.Live.AllowedOrigins) != 2 || cfg.Live.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Live.AllowedOrigins)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("dev mode should log at debug, got %v", cfg.SlogLevel())
	}
}

func TestLoadBadEnv(t *testing.T) {
	for _, tt := range []struct{ key, value string }{
		{"TASKLY_DEV", "sometimes"},
		{"TASKLY_MAX_INSTANCES", "many"},
	} {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(t.TempDir()); !errors.HasCode(err, errors.CodeConfig) {
				t.Errorf("expected T300, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"relative api url", func(c *Config) { c.APIBaseURL = "/api/" }},
		{"non-http api url", func(c *Config) { c.APIBaseURL = "ftp://example.com/" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero max instances", func(c *Config) { c.Instances.Max = 0 }},
		{"bad idle timeout", func(c *Config) { c.Instances.IdleTimeout = "soon" }},
		{"zero read timeout", func(c *Config) { c.Live.ReadTimeout = "0s" }},
		{"negative delay", func(c *Config) { c.MockAPI.Delay = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, errors.CodeConfig) {
				t.Errorf("Validate() = %v, want T300", err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "WARN"
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("SlogLevel() = %v, want WARN", cfg.SlogLevel())
	}
}
