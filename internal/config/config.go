// ABOUTME: Configuration loading and parsing for cafofo-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389/cafofo/internal/journal"
)

// MinJWTSecretLength matches the verifier's minimum HS256 key size.
const MinJWTSecretLength = 32

// Defaults applied when a section omits a value.
const (
	DefaultHTTPAddr         = "127.0.0.1:8080"
	DefaultDriver           = "sqlite"
	DefaultDedupeTTL        = 5 * time.Minute
	DefaultDedupeMaxSize    = 10000
	DefaultHistoryLimit     = 50
	DefaultHeartbeatPeriod  = 30 * time.Second
	DefaultTokenTTL         = 30 * 24 * time.Hour
	DefaultShutdownDeadline = 5 * time.Second
)

// Config represents the complete cafofo-gateway configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Tailscale     TailscaleConfig     `yaml:"tailscale"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Users         []UserConfig        `yaml:"users"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`

	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout,omitempty"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname,omitempty"`
	AuthKey   string `yaml:"auth_key,omitempty"`
	StateDir  string `yaml:"state_dir,omitempty"`
	Ephemeral bool   `yaml:"ephemeral,omitempty"`
	HTTPS     bool   `yaml:"https,omitempty"`
	Funnel    bool   `yaml:"funnel,omitempty"` // public Funnel, implies HTTPS
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path   string `yaml:"path"`
	Driver string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
}

// AuthConfig holds authentication configuration. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// UserConfig seeds one journal user.
type UserConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Avatar  string `yaml:"avatar,omitempty"`
	Pronoun string `yaml:"pronoun,omitempty"`
}

// User converts the seed to a journal.User.
func (u UserConfig) User() journal.User {
	return journal.User{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Pronoun: u.Pronoun}
}

// NotificationsConfig controls notification dedupe, history and streaming
type NotificationsConfig struct {
	DedupeMaxSize int `yaml:"dedupe_max_size,omitempty"`
	HistoryLimit  int `yaml:"history_limit,omitempty"`

	DedupeTTL         time.Duration `yaml:"-"`
	HeartbeatInterval time.Duration `yaml:"-"`

	DedupeTTLRaw         string `yaml:"dedupe_ttl"`
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Save writes c as YAML to path, creating parent directories. The file is
// private to the owner since it carries the signing secret.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append([]byte("# cafofo-gateway configuration\n"), data...)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownDeadline
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Notifications.DedupeTTL == 0 {
		c.Notifications.DedupeTTL = DefaultDedupeTTL
	}
	if c.Notifications.DedupeMaxSize == 0 {
		c.Notifications.DedupeMaxSize = DefaultDedupeMaxSize
	}
	if c.Notifications.HistoryLimit == 0 {
		c.Notifications.HistoryLimit = DefaultHistoryLimit
	}
	if c.Notifications.HeartbeatInterval == 0 {
		c.Notifications.HeartbeatInterval = DefaultHeartbeatPeriod
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Database.Driver {
	case "", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be sqlite or sqlite3, got %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinJWTSecretLength)
	}

	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		if u.ID == "" {
			return fmt.Errorf("users[%d].id is required", i)
		}
		if seen[u.ID] {
			return fmt.Errorf("users[%d].id %q is duplicated", i, u.ID)
		}
		seen[u.ID] = true
		switch u.Pronoun {
		case "", journal.PronounFeminine, journal.PronounMasculine:
		default:
			return fmt.Errorf("users[%d].pronoun must be %q or %q", i, journal.PronounFeminine, journal.PronounMasculine)
		}
	}

	if c.Notifications.DedupeMaxSize < 0 {
		return fmt.Errorf("notifications.dedupe_max_size must not be negative")
	}
	if c.Notifications.HistoryLimit < 0 {
		return fmt.Errorf("notifications.history_limit must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// JournalUsers returns the configured users as journal users.
func (c *Config) JournalUsers() []journal.User {
	out := make([]journal.User, len(c.Users))
	for i, u := range c.Users {
		out[i] = u.User()
	}
	return out
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"auth.token_ttl", cfg.Auth.TokenTTLRaw, &cfg.Auth.TokenTTL},
		{"notifications.dedupe_ttl", cfg.Notifications.DedupeTTLRaw, &cfg.Notifications.DedupeTTL},
		{"notifications.heartbeat_interval", cfg.Notifications.HeartbeatIntervalRaw, &cfg.Notifications.HeartbeatInterval},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = d
	}
	return nil
}
