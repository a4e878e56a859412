// ABOUTME: Root cobra command, persistent flags and the per-invocation app
// ABOUTME: The app wires config, gateway client, identity, dispatcher and editor

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389/cafofo/internal/client"
	"github.com/2389/cafofo/internal/config"
	"github.com/2389/cafofo/internal/draftcache"
	"github.com/2389/cafofo/internal/editor"
	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/logging"
	"github.com/2389/cafofo/internal/notify"
	"github.com/2389/cafofo/internal/session"
)

// TokenEnv supplies the gateway token when neither flag nor config does.
const TokenEnv = "CAFOFO_TOKEN"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	gatewayURL string
	token      string
	userID     string
	draftsPath string
	dryRun     bool
	verbose    bool
}

// New builds the cafofo command tree.
func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cafofo",
		Short:         "A shared journal for two, on the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&ro.configPath, "config", "", "client config file (default $"+config.ClientConfigEnv+" or XDG config)")
	flags.StringVar(&ro.gatewayURL, "gateway", "", "gateway URL, overrides gateway.url")
	flags.StringVar(&ro.token, "token", "", "bearer token, overrides gateway.token and $"+TokenEnv)
	flags.StringVar(&ro.userID, "as", "", "acting user id, overrides session.user_id")
	flags.StringVar(&ro.draftsPath, "drafts", "", "draft cache directory, overrides drafts.path")
	flags.BoolVar(&ro.dryRun, "dry-run", false, "print notifications instead of sending them")
	flags.BoolVarP(&ro.verbose, "verbose", "v", false, "debug logging")

	addCommands(cmd, ro)
	return cmd
}

// addCommands registers every subcommand on topLevel.
func addCommands(topLevel *cobra.Command, ro *rootOptions) {
	addUsers(topLevel, ro)
	addCalendar(topLevel, ro)
	addShow(topLevel, ro)
	addWrite(topLevel, ro)
	addComment(topLevel, ro)
	addLock(topLevel, ro)
	addUnlock(topLevel, ro)
	addDelete(topLevel, ro)
	addInbox(topLevel, ro)
	addWatch(topLevel, ro)
	addDrafts(topLevel, ro)
}

// loadConfig reads the client config and applies flag and env overrides.
func (ro *rootOptions) loadConfig() (*config.ClientConfig, error) {
	path := ro.configPath
	if path == "" {
		path = config.ClientConfigPath()
	}
	cfg, err := config.LoadClient(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if ro.gatewayURL != "" {
		cfg.Gateway.URL = ro.gatewayURL
	}
	switch {
	case ro.token != "":
		cfg.Gateway.Token = ro.token
	case cfg.Gateway.Token == "":
		cfg.Gateway.Token = os.Getenv(TokenEnv)
	}
	if ro.userID != "" {
		cfg.Session.UserID = ro.userID
	}
	if ro.draftsPath != "" {
		cfg.Drafts.Path = ro.draftsPath
	}
	if ro.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// app is everything a gateway-backed command needs for one invocation.
type app struct {
	cfg      *config.ClientConfig
	logger   *slog.Logger
	out      io.Writer
	client   *client.Client
	identity *session.Context
	editor   *editor.Session
	recorder *notify.Recorder
}

// connect loads config, resolves the acting user against the gateway and
// builds the editor session.
func (ro *rootOptions) connect(cmd *cobra.Command) (*app, error) {
	cfg, err := ro.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, "text")

	opts := []client.Option{client.WithLogger(logger)}
	if cfg.Gateway.Token != "" {
		opts = append(opts, client.WithToken(cfg.Gateway.Token))
	}
	c := client.New(cfg.Gateway.URL, opts...)

	identity, err := session.Start(cmd.Context(), c, cfg.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      cmd.OutOrStdout(),
		client:   c,
		identity: identity,
	}

	var sender notify.Sender = notify.ClientSender{Client: c}
	if ro.dryRun {
		a.recorder = &notify.Recorder{}
		sender = a.recorder
	}
	a.editor = editor.New(identity, c, notify.NewDispatcher(sender, logger), editor.WithLogger(logger))
	return a, nil
}

func (a *app) close() {
	a.editor.Close()
	a.identity.Close()
}

func (a *app) me() journal.User {
	u, _ := a.identity.CurrentUser()
	return u
}

// owner resolves a --user flag value. "me" or empty is the acting user,
// "other" is the other journal member.
func (a *app) owner(flag string) (journal.User, error) {
	me := a.me()
	switch flag {
	case "", "me":
		return me, nil
	case "other":
		u, ok := session.OtherUser(a.identity.Audience(), me.ID)
		if !ok {
			return journal.User{}, errors.New("nobody else shares this journal")
		}
		return u, nil
	}
	u, ok := a.identity.Lookup(flag)
	if !ok {
		return journal.User{}, fmt.Errorf("%w: %s", session.ErrUnknownUser, flag)
	}
	return u, nil
}

// open selects owner's entry for date, answering the password challenge
// with password when the entry is protected.
func (a *app) open(ctx context.Context, owner journal.User, date journal.Date, password string) (journal.Draft, error) {
	d, err := a.editor.Open(ctx, owner.ID, date)
	if !errors.Is(err, editor.ErrLocked) {
		return d, err
	}
	if password == "" {
		return journal.Draft{}, fmt.Errorf("%s's page for %s is password protected (use --password)", owner.Name, date)
	}
	if err := a.editor.Verify(password); err != nil {
		return journal.Draft{}, err
	}
	return a.editor.Draft()
}

// reportNotifications prints what --dry-run withheld.
func (a *app) reportNotifications() {
	if a.recorder == nil {
		return
	}
	for _, e := range a.recorder.Events() {
		faint.Fprintf(a.out, "  would notify %s: %s (%s)\n", e.TargetUserID, e.Body, e.URL)
	}
	a.recorder.Reset()
}

// openDrafts opens the draft cache named by cfg.
func openDrafts(cfg *config.ClientConfig) (*draftcache.Cache, error) {
	return draftcache.Open(cfg.Drafts.Path)
}

// parseDay accepts YYYY-MM-DD, "today" and "yesterday".
func parseDay(s string) (journal.Date, error) {
	switch strings.ToLower(s) {
	case "today", "hoje":
		return journal.Today(), nil
	case "yesterday", "ontem":
		return journal.Today().AddDays(-1), nil
	}
	d, err := journal.ParseDate(s)
	if err != nil {
		return journal.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD, today or yesterday)", s)
	}
	return d, nil
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}
