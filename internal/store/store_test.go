// ABOUTME: Behavioural tests shared by SQLiteStore and MockStore
// ABOUTME: Covers entry uniqueness, versioned updates, users and notification history

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cafofo/internal/journal"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestStore(t)) })
	t.Run("mock", func(t *testing.T) { fn(t, NewMockStore()) })
}

func newEntry(userID, date, title string) *journal.Entry {
	return &journal.Entry{
		UserID:  userID,
		Date:    journal.MustParseDate(date),
		Title:   title,
		Content: "<p>" + title + "</p>",
	}
}

func TestStore_CreateAndResolve(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		e := newEntry("A", "2024-01-15", "Dia bom")
		require.NoError(t, s.CreateEntry(ctx, e))
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, int64(1), e.Version)
		assert.False(t, e.CreatedAt.IsZero())

		got, err := s.GetEntryByDate(ctx, "A", journal.MustParseDate("2024-01-15"))
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, "Dia bom", got.Title)
		assert.Equal(t, "<p>Dia bom</p>", got.Content)

		_, err = s.GetEntryByDate(ctx, "B", journal.MustParseDate("2024-01-15"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetEntry(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_OneEntryPerUserAndDate(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.CreateEntry(ctx, newEntry("A", "2024-01-15", "first")))
		err := s.CreateEntry(ctx, newEntry("A", "2024-01-15", "second"))
		assert.ErrorIs(t, err, ErrDuplicateEntry)

		// Same date for another user is a different slot
		require.NoError(t, s.CreateEntry(ctx, newEntry("B", "2024-01-15", "hers")))

		list, err := s.ListEntries(ctx, "A")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestStore_ContentStoredVerbatim(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		date := journal.MustParseDate("2024-03-01")

		e := &journal.Entry{UserID: "A", Date: date}
		require.NoError(t, s.CreateEntry(ctx, e))
		assert.Equal(t, "", e.Content)
		got, err := s.GetEntryByDate(ctx, "A", date)
		require.NoError(t, err)
		assert.Equal(t, "", got.Content, "create keeps empty content")

		edit := got.Clone()
		edit.Content = journal.PlaceholderContent
		require.NoError(t, s.UpdateEntry(ctx, edit))
		edit.Content = ""
		require.NoError(t, s.UpdateEntry(ctx, edit))
		got, err = s.GetEntryByDate(ctx, "A", date)
		require.NoError(t, err)
		assert.Equal(t, "", got.Content, "update keeps empty content")
	})
}

func TestStore_ListEntriesOrdered(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, d := range []string{"2024-03-01", "2024-01-01", "2024-02-01"} {
			require.NoError(t, s.CreateEntry(ctx, newEntry("A", d, d)))
		}
		locked := newEntry("A", "2024-04-01", "secret")
		locked.IsPasswordProtected = true
		locked.Password = "1234"
		require.NoError(t, s.CreateEntry(ctx, locked))

		list, err := s.ListEntries(ctx, "A")
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, "2024-01-01", list[0].Date.String())
		assert.Equal(t, "2024-04-01", list[3].Date.String())
		assert.True(t, list[3].IsPasswordProtected)
		assert.False(t, list[0].IsPasswordProtected)

		empty, err := s.ListEntries(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})
}

func TestStore_UpdateEntryVersioning(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		e := newEntry("A", "2024-01-15", "Dia bom")
		require.NoError(t, s.CreateEntry(ctx, e))

		edit := e.Clone()
		edit.Comment = "olha isso"
		require.NoError(t, s.UpdateEntry(ctx, edit))
		assert.Equal(t, int64(2), edit.Version)
		assert.Equal(t, "olha isso", edit.Comment)

		// Stale version from the original copy is rejected
		stale := e.Clone()
		stale.Title = "overwrite"
		assert.ErrorIs(t, s.UpdateEntry(ctx, stale), ErrVersionConflict)

		// Version zero skips the check
		blind := e.Clone()
		blind.Version = 0
		blind.Title = "last write"
		require.NoError(t, s.UpdateEntry(ctx, blind))
		assert.Equal(t, int64(3), blind.Version)
		assert.Equal(t, "", blind.Comment, "a blind write replaces every editable field")

		missing := &journal.Entry{ID: "missing", Version: 1}
		assert.ErrorIs(t, s.UpdateEntry(ctx, missing), ErrNotFound)
	})
}

func TestStore_DeleteEntry(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		e := newEntry("A", "2024-01-15", "Dia bom")
		require.NoError(t, s.CreateEntry(ctx, e))

		require.NoError(t, s.DeleteEntry(ctx, e.ID))
		_, err := s.GetEntryByDate(ctx, "A", e.Date)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteEntry(ctx, e.ID), ErrNotFound)

		// The slot is free again
		require.NoError(t, s.CreateEntry(ctx, newEntry("A", "2024-01-15", "again")))
	})
}

func TestStore_Users(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.UpsertUser(ctx, &journal.User{ID: "A", Name: "Ana", Pronoun: "a"}))
		require.NoError(t, s.UpsertUser(ctx, &journal.User{ID: "B", Name: "Bruno", Pronoun: "o"}))
		require.NoError(t, s.UpsertUser(ctx, &journal.User{ID: "A", Name: "Ana Clara", Pronoun: "a", Avatar: "ana.png"}))
		assert.Error(t, s.UpsertUser(ctx, &journal.User{Name: "no id"}))

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Ana Clara", users[0].Name)
		assert.Equal(t, "ana.png", users[0].Avatar)

		u, err := s.GetUser(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, "o", u.Pronoun)

		_, err = s.GetUser(ctx, "Z")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Notifications(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, body := range []string{"one", "two", "three"} {
			require.NoError(t, s.SaveNotification(ctx, &Notification{
				UserID: "A", SenderID: "B", Kind: NotificationEdited, Body: body, URL: "/journal/page?date=2024-01-15",
			}))
		}
		require.NoError(t, s.SaveNotification(ctx, &Notification{UserID: "B", Body: "other"}))

		list, err := s.ListNotifications(ctx, "A", 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "three", list[0].Body)
		assert.Equal(t, "two", list[1].Body)
		assert.Equal(t, NotificationEdited, list[0].Kind)
		assert.NotEmpty(t, list[0].ID)

		all, err := s.ListNotifications(ctx, "B", 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
