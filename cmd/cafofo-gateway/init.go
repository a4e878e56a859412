// ABOUTME: Interactive setup for cafofo-gateway
// ABOUTME: Asks for listener, database, users and tailscale settings and writes the YAML config

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/cafofo/internal/config"
)

// journalUsers is how many users init asks for; the journal is shared by two.
const journalUsers = 2

func newInitCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			return runInit(p, ro.path())
		},
	}
}

func runInit(p *prompter, defaultPath string) error {
	bold := color.New(color.Bold)
	bold.Fprintln(p.out, "cafofo-gateway setup")
	fmt.Fprintln(p.out)

	path := p.ask("Config file path", defaultPath)
	if _, err := os.Stat(path); err == nil && !p.confirm(path+" exists. Overwrite?") {
		fmt.Fprintln(p.out, "Nothing written.")
		return nil
	}

	var cfg config.Config
	cfg.Server.HTTPAddr = p.ask("HTTP address", config.DefaultHTTPAddr)
	cfg.Database.Path = p.ask("SQLite database path", config.DefaultDatabasePath())
	cfg.Database.Driver = config.DefaultDriver

	for i := 1; i <= journalUsers; i++ {
		id := p.ask(fmt.Sprintf("User %d id (empty to stop)", i), "")
		if id == "" {
			break
		}
		cfg.Users = append(cfg.Users, config.UserConfig{
			ID:      id,
			Name:    p.ask(fmt.Sprintf("User %d display name", i), id),
			Pronoun: p.ask(fmt.Sprintf("User %d article (a/o)", i), ""),
		})
	}

	if p.confirm("Serve over Tailscale?") {
		ts := &cfg.Tailscale
		ts.Enabled = true
		ts.Hostname = p.ask("Tailscale hostname", "cafofo")
		ts.AuthKey = p.ask("Tailscale auth key (empty for interactive login)", "")
		ts.Ephemeral = p.confirm("Ephemeral node?")
		ts.Funnel = p.confirm("Expose publicly through Funnel?")
	}

	cfg.Logging.Level = p.ask("Log level (debug/info/warn/error)", "info")
	cfg.Logging.Format = p.ask("Log format (text/json)", "text")

	secret, err := newSecret()
	if err != nil {
		return err
	}
	cfg.Auth.JWTSecret = secret
	cfg.Auth.TokenTTLRaw = "720h"
	cfg.Notifications.DedupeTTLRaw = "5m"
	cfg.Notifications.HeartbeatIntervalRaw = "30s"

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	color.New(color.FgGreen).Fprintf(p.out, "\nWrote %s\n", path)
	fmt.Fprintf(p.out, "Database goes in %s\n\nThen run:\n  cafofo-gateway serve\n", dataDir)
	if len(cfg.Users) > 0 {
		fmt.Fprintf(p.out, "  cafofo-gateway token --user %s\n", cfg.Users[0].ID)
	}
	return nil
}

// newSecret returns 32 random bytes, base64 encoded, for HS256 signing.
func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// prompter reads line answers; EOF or a blank line takes the default.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return def
	}
	if line == "" {
		return def
	}
	return line
}

func (p *prompter) confirm(question string) bool {
	switch strings.ToLower(p.ask(question, "no")) {
	case "y", "yes":
		return true
	}
	return false
}
