// ABOUTME: Configuration for the cafofo CLI
// ABOUTME: Loads TOML from CAFOFO_CLIENT_CONFIG or the XDG config path

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClientConfigEnv names the variable that overrides the client config path.
const ClientConfigEnv = "CAFOFO_CLIENT_CONFIG"

// ClientConfig is the cafofo CLI configuration.
type ClientConfig struct {
	Gateway GatewayConfig       `toml:"gateway"`
	Session SessionConfig       `toml:"session"`
	Drafts  DraftsConfig        `toml:"drafts"`
	Logging ClientLoggingConfig `toml:"logging"`
}

// GatewayConfig locates the gateway.
type GatewayConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// SessionConfig names the acting user.
type SessionConfig struct {
	UserID string `toml:"user_id"`
}

// DraftsConfig locates the draft cache.
type DraftsConfig struct {
	Path string `toml:"path"`
}

// ClientLoggingConfig holds CLI logging settings.
type ClientLoggingConfig struct {
	Level string `toml:"level"`
}

// ClientConfigPath returns the client config location: $CAFOFO_CLIENT_CONFIG,
// then $XDG_CONFIG_HOME/cafofo/client.toml, then ~/.config/cafofo/client.toml.
func ClientConfigPath() string {
	if p := os.Getenv(ClientConfigEnv); p != "" {
		return p
	}
	return configFile("client.toml")
}

// DefaultDraftsPath returns $XDG_DATA_HOME/cafofo/drafts or ~/.local/share/cafofo/drafts.
func DefaultDraftsPath() string {
	return filepath.Join(DataDir(), "drafts")
}

// LoadClient reads the client config at path. A missing file yields the
// defaults so flags and environment can supply everything.
func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if _, err := toml.Decode(expandEnvVars(string(data)), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.Drafts.Path == "" {
		cfg.Drafts.Path = DefaultDraftsPath()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	return &cfg, nil
}

// Validate checks the fields every gateway command needs.
func (c *ClientConfig) Validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required")
	}
	u, err := url.Parse(c.Gateway.URL)
	if err != nil {
		return fmt.Errorf("gateway.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway.url must use http or https scheme")
	}
	if c.Session.UserID == "" {
		return fmt.Errorf("session.user_id is required")
	}
	return nil
}
