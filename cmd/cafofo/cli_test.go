// ABOUTME: End-to-end tests for the cafofo CLI
// ABOUTME: Runs commands against an in-process gateway backed by MockStore

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cafofo/internal/config"
	"github.com/2389/cafofo/internal/gateway"
	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/store"
)

type cliEnv struct {
	store  *store.MockStore
	url    string
	drafts string
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	color.NoColor = true

	cfg := &config.Config{
		Users: []config.UserConfig{
			{ID: "ana", Name: "Ana", Pronoun: journal.PronounFeminine},
			{ID: "bruno", Name: "Bruno", Pronoun: journal.PronounMasculine},
		},
		Notifications: config.NotificationsConfig{
			DedupeTTL:         time.Minute,
			DedupeMaxSize:     100,
			HistoryLimit:      50,
			HeartbeatInterval: time.Hour,
		},
	}
	ms := store.NewMockStore()
	gw, err := gateway.NewWithStore(cfg, ms, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = gw.Shutdown(context.Background()) })

	dir := t.TempDir()
	return &cliEnv{
		store:  ms,
		url:    srv.URL,
		drafts: filepath.Join(dir, "drafts"),
		config: filepath.Join(dir, "missing.toml"),
	}
}

// run executes cafofo as user with args and returns its stdout.
func (e *cliEnv) run(t *testing.T, user string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New()
	cmd.SetArgs(append([]string{
		"--config", e.config,
		"--gateway", e.url,
		"--drafts", e.drafts,
		"--as", user,
	}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, user string, args ...string) string {
	t.Helper()
	out, err := e.run(t, user, args...)
	require.NoError(t, err, out)
	return out
}

const day = "2024-01-15"

func TestWriteShowCalendar(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "ana", "write", day, "--title", "Dia bom", "--content", "<p>praia</p>")
	assert.Contains(t, out, "saved 2024-01-15 (version 1)")

	out = env.mustRun(t, "bruno", "show", day, "--user", "ana")
	assert.Contains(t, out, "Dia bom")
	assert.Contains(t, out, "<p>praia</p>")

	out = env.mustRun(t, "ana", "calendar")
	assert.Contains(t, out, "2024-01-15")

	out = env.mustRun(t, "ana", "calendar", "--month", "2024-02")
	assert.Contains(t, out, "no pages yet")

	out = env.mustRun(t, "bruno", "inbox")
	assert.Contains(t, out, "A Ana escreveu no diário do dia 15/01/2024")

	out = env.mustRun(t, "ana", "inbox")
	assert.Contains(t, out, "no notifications")
}

func TestWrite_NothingToSave(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "ana", "write", day, "--title", "Dia bom")

	out := env.mustRun(t, "ana", "write", day, "--title", "Dia bom")
	assert.Contains(t, out, "nothing to save")
	assert.Equal(t, 1, env.store.CallCount("CreateEntry"))
	assert.Equal(t, 0, env.store.CallCount("UpdateEntry"))
}

func TestWrite_ContentFromStdin(t *testing.T) {
	env := newCLIEnv(t)

	var out bytes.Buffer
	cmd := New()
	cmd.SetArgs([]string{"--config", env.config, "--gateway", env.url, "--drafts", env.drafts, "--as", "ana",
		"write", day, "--content", "-"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader("<p>do stdin</p>"))
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	e, err := env.store.GetEntryByDate(context.Background(), "ana", journal.MustParseDate(day))
	require.NoError(t, err)
	assert.Equal(t, "<p>do stdin</p>", e.Content)
}

func TestCommentDryRunNotifiesOwner(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "ana", "write", day, "--title", "Dia bom")

	out := env.mustRun(t, "bruno", "--dry-run", "comment", day, "que", "lindo")
	assert.Contains(t, out, "would notify ana: O Bruno comentou na sua página do dia 15/01/2024")

	e, err := env.store.GetEntryByDate(context.Background(), "ana", journal.MustParseDate(day))
	require.NoError(t, err)
	assert.Equal(t, "que lindo", e.Comment)

	out = env.mustRun(t, "ana", "inbox")
	assert.NotContains(t, out, "comentou", "dry run must not send")
}

func TestLockAndUnlock(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "ana", "write", day, "--title", "Segredo")

	out := env.mustRun(t, "ana", "lock", day, "s3nha")
	assert.Contains(t, out, "locked 2024-01-15")

	_, err := env.run(t, "bruno", "show", day, "--user", "ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password protected")

	_, err = env.run(t, "bruno", "show", day, "--user", "ana", "--password", "S3NHA")
	assert.ErrorIs(t, err, journal.ErrPasswordMismatch)

	out = env.mustRun(t, "bruno", "show", day, "--user", "ana", "--password", "s3nha")
	assert.Contains(t, out, "Segredo")
	assert.Contains(t, out, "[locked]")

	out = env.mustRun(t, "ana", "calendar")
	assert.Contains(t, out, "[locked]")

	env.mustRun(t, "ana", "unlock", day, "--password", "s3nha")
	out = env.mustRun(t, "bruno", "show", day, "--user", "ana")
	assert.Contains(t, out, "Segredo")
}

func TestKeepAndRestoreDraft(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "ana", "write", day, "--title", "rascunho", "--keep")
	assert.Contains(t, out, "draft kept")
	assert.Equal(t, 0, env.store.CallCount("CreateEntry"))

	out = env.mustRun(t, "ana", "drafts")
	assert.Contains(t, out, "rascunho")
	assert.Contains(t, out, "new")

	out = env.mustRun(t, "ana", "write", day)
	assert.Contains(t, out, "restored draft")
	assert.Contains(t, out, "saved 2024-01-15")

	e, err := env.store.GetEntryByDate(context.Background(), "ana", journal.MustParseDate(day))
	require.NoError(t, err)
	assert.Equal(t, "rascunho", e.Title)

	out = env.mustRun(t, "ana", "drafts")
	assert.Contains(t, out, "no kept drafts")
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	env := newCLIEnv(t)
	env.store.FailNext = errors.New("disk full")

	_, err := env.run(t, "ana", "write", day, "--title", "quase")
	require.Error(t, err)
	assert.ErrorIs(t, err, journal.ErrPersistence)
	assert.Contains(t, err.Error(), "draft kept")

	out := env.mustRun(t, "ana", "drafts")
	assert.Contains(t, out, "quase")

	out = env.mustRun(t, "ana", "write", day)
	assert.Contains(t, out, "saved")
}

func TestRestoreConflict(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "ana", "write", day, "--title", "v1")
	env.mustRun(t, "ana", "write", day, "--title", "meu rascunho", "--keep")

	// The page moves on while the draft sits in the cache
	env.mustRun(t, "bruno", "comment", day, "oi")

	_, err := env.run(t, "ana", "write", day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--discard")

	out := env.mustRun(t, "ana", "write", day, "--discard", "--title", "v2")
	assert.Contains(t, out, "discarded draft")
	assert.Contains(t, out, "saved")
}

func TestDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "ana", "write", day, "--title", "some")
	env.mustRun(t, "ana", "lock", day, "x")

	out := env.mustRun(t, "ana", "delete", day)
	assert.Contains(t, out, "deleted 2024-01-15")

	out = env.mustRun(t, "ana", "delete", day)
	assert.Contains(t, out, "has no page")

	out = env.mustRun(t, "ana", "show", day)
	assert.Contains(t, out, "has no page")
}

func TestUsersAndUnknownIdentity(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "bruno", "users")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "bruno")
	assert.Contains(t, out, "(you)")

	_, err := env.run(t, "carla", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown user")

	_, err = env.run(t, "ana", "show", day, "--user", "carla")
	assert.Error(t, err)
}

func TestArgsValidation(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "ana", "show")
	assert.Error(t, err)
	_, err = env.run(t, "ana", "show", "15/01/2024")
	assert.Error(t, err)
	_, err = env.run(t, "ana", "comment", day)
	assert.Error(t, err)
	_, err = env.run(t, "ana", "lock", day)
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, journal.MustParseDate("2024-01-15"), d)

	today, err := parseDay("today")
	require.NoError(t, err)
	assert.Equal(t, journal.Today(), today)

	yesterday, err := parseDay("ontem")
	require.NoError(t, err)
	assert.Equal(t, journal.Today().AddDays(-1), yesterday)

	_, err = parseDay("amanhã")
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")
	ro := &rootOptions{configPath: filepath.Join(t.TempDir(), "none.toml"), userID: "ana", verbose: true}

	cfg, err := ro.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Gateway.Token)
	assert.Equal(t, "ana", cfg.Session.UserID)
	assert.Equal(t, "debug", cfg.Logging.Level)

	ro.token = "from-flag"
	cfg, err = ro.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Gateway.Token)
}
