// ABOUTME: Entry point for cafofo-gateway, the shared journal server
// ABOUTME: Cobra commands to serve, write a config, mint user tokens and check health

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/cafofo/internal/auth"
	"github.com/2389/cafofo/internal/config"
	"github.com/2389/cafofo/internal/gateway"
	"github.com/2389/cafofo/internal/logging"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            __       __
  ___ __ _ / _| ___ / _| ___
 / __/ _' | |_ / _ \ |_ / _ \
| (_| (_| |  _| (_) |  _| (_) |
 \___\__,_|_|  \___/|_|  \___/   gateway
`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func (o *rootOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.GatewayConfigPath()
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cafofo-gateway",
		Short:         "Serves the shared journal and its notifications.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "gateway config file (default $"+config.GatewayConfigEnv+" or XDG config)")

	cmd.AddCommand(
		newServeCommand(ro),
		newInitCommand(ro),
		newTokenCommand(ro),
		newCheckCommand(ro, "health", "/health", "Check that the gateway is up"),
		newCheckCommand(ro, "ready", "/health/ready", "Check that the gateway can reach its database"),
	)
	return cmd
}

func newServeCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ro, cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, ro *rootOptions, out io.Writer) error {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(out, banner)
	gray.Fprintf(out, "    version: %s\n\n", version)

	cfg, err := ro.load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	bullet := func(label, value string) {
		color.New(color.FgGreen).Fprint(out, "    ▶ ")
		fmt.Fprintf(out, "%-10s %s\n", label+":", value)
	}
	bullet("Config", ro.path())
	bullet("HTTP", cfg.Server.HTTPAddr)
	bullet("Database", fmt.Sprintf("%s (%s)", cfg.Database.Path, cfg.Database.Driver))
	bullet("Users", fmt.Sprint(len(cfg.Users)))
	if ts := cfg.Tailscale; ts.Enabled {
		mode := ""
		if ts.Funnel {
			mode = " [funnel]"
		} else if ts.Ephemeral {
			mode = " (ephemeral)"
		}
		bullet("Tailscale", ts.Hostname+mode)
	}
	if cfg.Auth.JWTSecret == "" {
		yellow.Fprintln(out, "    ! auth disabled (no jwt_secret)")
	}
	fmt.Fprintln(out)

	logger.Info("starting cafofo-gateway",
		"config", ro.path(),
		"http_addr", cfg.Server.HTTPAddr,
		"users", len(cfg.Users),
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	return gw.Run(ctx)
}

// newCheckCommand fetches path from the configured gateway and prints the body.
func newCheckCommand(ro *rootOptions, name, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load()
			if err != nil {
				return err
			}
			body, err := fetchStatus(cmd.Context(), "http://"+cfg.Server.HTTPAddr+path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
}

func fetchStatus(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reaching gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	text := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, text)
	}
	return text, nil
}

func newTokenCommand(ro *rootOptions) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token --user ID",
		Short: "Issue a bearer token for a configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load()
			if err != nil {
				return err
			}
			token, expires, err := issueToken(cfg, strings.TrimSpace(userID), ttl)
			if err != nil {
				return err
			}
			color.New(color.FgHiBlack).Fprintf(cmd.ErrOrStderr(), "token for %s (expires %s)\n", userID, expires.Format("Jan 02, 2006"))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id from the config's users list")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// issueToken signs a token for userID, who must be a configured user.
func issueToken(cfg *config.Config, userID string, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("--user must not be empty")
	}
	if cfg.Auth.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("auth.jwt_secret is not configured")
	}
	known := false
	for _, u := range cfg.Users {
		known = known || u.ID == userID
	}
	if !known {
		return "", time.Time{}, fmt.Errorf("user %q is not configured", userID)
	}
	if ttl < 0 {
		return "", time.Time{}, fmt.Errorf("--ttl must be positive")
	}
	if ttl == 0 {
		ttl = cfg.Auth.TokenTTL
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("creating JWT verifier: %w", err)
	}
	token, err := verifier.Generate(userID, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating token: %w", err)
	}
	return token, time.Now().Add(ttl).UTC(), nil
}
