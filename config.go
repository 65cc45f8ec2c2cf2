package taskly

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskly-dev/taskly/internal/config"
	"github.com/taskly-dev/taskly/pkg/auth"
	"github.com/taskly-dev/taskly/pkg/instance"
	"github.com/taskly-dev/taskly/pkg/live"
)

// Config is the application configuration.
type Config struct {
	// APIBaseURL is the auth backend's base URL. Ignored when Backend is set.
	APIBaseURL string

	// Backend overrides the HTTP auth backend client.
	Backend auth.Backend

	// DevMode allows live connections from any origin.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Instances configures how form instances are kept between requests.
	Instances instance.Config

	// Live configures the live channel. CheckOrigin is derived from
	// AllowedOrigins and DevMode when nil.
	Live live.Config

	// AllowedOrigins lists origins besides the app's own host that may
	// open live connections.
	AllowedOrigins []string

	// Registry receives the app's metrics and backs /metrics.
	// If nil, a fresh registry with the Go and process collectors is used.
	Registry *prometheus.Registry

	// ShutdownTimeout bounds graceful shutdown in Run.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:      config.DefaultAPIBaseURL,
		Instances:       instance.DefaultConfig(),
		Live:            live.DefaultConfig(),
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFrom builds a Config from loaded file and environment settings.
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	cfg := DefaultConfig()
	cfg.APIBaseURL = c.APIBaseURL
	cfg.DevMode = c.Dev
	cfg.Logger = logger
	cfg.Instances.MaxInstances = c.Instances.Max
	cfg.Instances.IdleTimeout = c.IdleTimeout()
	cfg.Live.ReadTimeout = c.LiveReadTimeout()
	cfg.AllowedOrigins = c.Live.AllowedOrigins
	return cfg
}
