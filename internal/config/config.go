package config

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskly-dev/taskly/internal/errors"
)

const (
	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "taskly.json"

	// EnvFileName is the name of the optional dotenv file.
	EnvFileName = ".env"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKLY_"

	// DefaultAddr is the default listen address of the web app.
	DefaultAddr = "localhost:3000"

	// DefaultAPIBaseURL is the default auth backend, the mock backend's
	// default address.
	DefaultAPIBaseURL = "http://localhost:8000/"

	// DefaultMockAddr is the default listen address of the mock backend.
	DefaultMockAddr = "localhost:8000"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"
)

// Config is the complete taskly configuration.
type Config struct {
	// Addr is the web app's listen address.
	Addr string `json:"addr,omitempty"`

	// APIBaseURL is the auth backend's base URL.
	APIBaseURL string `json:"apiBaseURL,omitempty"`

	// Dev enables development mode: text logs at debug level.
	Dev bool `json:"dev,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// Instances configures the form instance manager.
	Instances InstancesConfig `json:"instances,omitempty"`

	// Live configures the live channel.
	Live LiveConfig `json:"live,omitempty"`

	// MockAPI configures the development auth backend.
	MockAPI MockAPIConfig `json:"mockAPI,omitempty"`

	// configPath stores the path the config was loaded from, if any.
	configPath string
}

// InstancesConfig configures how long form instances live.
type InstancesConfig struct {
	// Max caps live instances; the least recently used is evicted.
	Max int `json:"max,omitempty"`

	// IdleTimeout expires untouched instances (e.g., "30m").
	IdleTimeout string `json:"idleTimeout,omitempty"`
}

// LiveConfig configures the live WebSocket channel.
type LiveConfig struct {
	// ReadTimeout closes silent connections (e.g., "60s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// AllowedOrigins lists extra origins allowed to connect. The app's own
	// host is always allowed.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MockAPIConfig configures the mock auth backend.
type MockAPIConfig struct {
	// Addr is the mock backend's listen address.
	Addr string `json:"addr,omitempty"`

	// Delay is added before every response (e.g., "1s").
	Delay string `json:"delay,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Addr:       DefaultAddr,
		APIBaseURL: DefaultAPIBaseURL,
		LogLevel:   DefaultLogLevel,
		Instances: InstancesConfig{
			Max:         10000,
			IdleTimeout: "30m",
		},
		Live: LiveConfig{
			ReadTimeout: "60s",
		},
		MockAPI: MockAPIConfig{
			Addr:  DefaultMockAddr,
			Delay: "0s",
		},
	}
}

// Load builds the configuration for dir. Sources, lowest precedence first:
// defaults, taskly.json, .env, then the process environment. Both files
// are optional.
func Load(dir string) (*Config, error) {
	cfg := New()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.CodeConfig).
				WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error())
		}
		cfg.configPath = path
	case !os.IsNotExist(err):
		return nil, errors.New(errors.CodeConfig).Wrap(err)
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.New(errors.CodeConfig).
			WithDetail("Failed to parse " + EnvFileName + ": " + err.Error())
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overrides fields from TASKLY_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("API_BASE_URL", &c.APIBaseURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("INSTANCE_IDLE_TIMEOUT", &c.Instances.IdleTimeout)
	str("LIVE_READ_TIMEOUT", &c.Live.ReadTimeout)
	str("MOCKAPI_ADDR", &c.MockAPI.Addr)
	str("MOCKAPI_DELAY", &c.MockAPI.Delay)

	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.Live.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Live.AllowedOrigins = append(c.Live.AllowedOrigins, o)
			}
		}
	}
	if v, ok := lookup(EnvPrefix + "DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.CodeConfig).
				WithDetail(EnvPrefix + "DEV must be a boolean, got " + strconv.Quote(v))
		}
		c.Dev = b
	}
	if v, ok := lookup(EnvPrefix + "MAX_INSTANCES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.CodeConfig).
				WithDetail(EnvPrefix + "MAX_INSTANCES must be an integer, got " + strconv.Quote(v))
		}
		c.Instances.Max = n
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Instances.Max == 0 {
		c.Instances.Max = d.Instances.Max
	}
	if c.Instances.IdleTimeout == "" {
		c.Instances.IdleTimeout = d.Instances.IdleTimeout
	}
	if c.Live.ReadTimeout == "" {
		c.Live.ReadTimeout = d.Live.ReadTimeout
	}
	if c.MockAPI.Addr == "" {
		c.MockAPI.Addr = d.MockAPI.Addr
	}
	if c.MockAPI.Delay == "" {
		c.MockAPI.Delay = d.MockAPI.Delay
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New(errors.CodeConfig).WithDetail("addr must not be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.CodeConfig).
			WithDetail("apiBaseURL must be an absolute http(s) URL, got " + strconv.Quote(c.APIBaseURL))
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return errors.New(errors.CodeConfig).
			WithDetail("logLevel must be one of debug, info, warn, error, got " + strconv.Quote(c.LogLevel))
	}
	if c.Instances.Max <= 0 {
		return errors.New(errors.CodeConfig).WithDetail("instances.max must be positive")
	}
	for name, value := range map[string]string{
		"instances.idleTimeout": c.Instances.IdleTimeout,
		"live.readTimeout":      c.Live.ReadTimeout,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return errors.New(errors.CodeConfig).
				WithDetail(name + " must be a positive duration, got " + strconv.Quote(value))
		}
	}
	if d, err := time.ParseDuration(c.MockAPI.Delay); err != nil || d < 0 {
		return errors.New(errors.CodeConfig).
			WithDetail("mockAPI.delay must be a non-negative duration, got " + strconv.Quote(c.MockAPI.Delay))
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level. Dev mode always logs at
// debug level.
func (c *Config) SlogLevel() slog.Level {
	if c.Dev {
		return slog.LevelDebug
	}
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// IdleTimeout returns the parsed instance idle timeout. Call Validate first.
func (c *Config) IdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Instances.IdleTimeout)
	return d
}

// LiveReadTimeout returns the parsed live read timeout.
func (c *Config) LiveReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Live.ReadTimeout)
	return d
}

// MockDelay returns the parsed mock backend delay.
func (c *Config) MockDelay() time.Duration {
	d, _ := time.ParseDuration(c.MockAPI.Delay)
	return d
}

// Path returns the path the config file was loaded from, or "" when no
// taskly.json was found.
func (c *Config) Path() string {
	return c.configPath
}
