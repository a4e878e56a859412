// ABOUTME: Default file locations for the gateway and the CLI
// ABOUTME: Resolves XDG config and data directories with home-directory fallbacks

package config

import (
	"os"
	"path/filepath"
)

// GatewayConfigEnv names the variable that overrides the gateway config path.
const GatewayConfigEnv = "CAFOFO_CONFIG"

// GatewayConfigPath returns $CAFOFO_CONFIG, then
// $XDG_CONFIG_HOME/cafofo/gateway.yaml, then ~/.config/cafofo/gateway.yaml.
func GatewayConfigPath() string {
	if p := os.Getenv(GatewayConfigEnv); p != "" {
		return p
	}
	return configFile("gateway.yaml")
}

// DataDir returns $XDG_DATA_HOME/cafofo or ~/.local/share/cafofo.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// DefaultDatabasePath is where init proposes to keep the journal database.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "journal.db")
}

func configFile(name string) string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), name)
}

// xdgDir returns $env/cafofo, or home/fallback.../cafofo when env is unset.
// Without a home directory the fallback is relative to the working directory.
func xdgDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "cafofo")
	}
	base := filepath.Join(fallback...)
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, base)
	}
	return filepath.Join(base, "cafofo")
}
