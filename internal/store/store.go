// ABOUTME: Store interfaces and data types for cafofo persistence
// ABOUTME: Defines entry, user and notification storage contracts

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/cafofo/internal/journal"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEntry is returned when an entry already exists for (user_id, date)
var ErrDuplicateEntry = errors.New("entry already exists for user and date")

// ErrVersionConflict is returned when an update names a version that is no longer current
var ErrVersionConflict = errors.New("entry version conflict")

// Notification kinds
const (
	NotificationCreated   = "created"
	NotificationEdited    = "edited"
	NotificationCommented = "commented"
)

// Notification is a delivered notification addressed to one user.
type Notification struct {
	ID        string
	UserID    string // recipient
	SenderID  string // acting user, empty when unknown
	Kind      string
	Title     string
	Body      string
	URL       string
	CreatedAt time.Time
}

// EntryStore persists journal entries. At most one entry exists per
// (UserID, Date).
type EntryStore interface {
	// CreateEntry assigns ID, Version and timestamps to entry and stores it.
	// Returns ErrDuplicateEntry if the (user, date) slot is taken.
	CreateEntry(ctx context.Context, entry *journal.Entry) error

	// GetEntry retrieves an entry by ID.
	GetEntry(ctx context.Context, id string) (*journal.Entry, error)

	// GetEntryByDate retrieves the entry for (userID, date).
	GetEntryByDate(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error)

	// ListEntries returns calendar summaries for userID ordered by date.
	ListEntries(ctx context.Context, userID string) ([]journal.Summary, error)

	// UpdateEntry replaces the editable fields of entry. When entry.Version
	// is non-zero it must match the stored version. On success entry is
	// refreshed with the stored state.
	UpdateEntry(ctx context.Context, entry *journal.Entry) error

	// DeleteEntry removes an entry by ID.
	DeleteEntry(ctx context.Context, id string) error
}

// UserStore persists the journal audience.
type UserStore interface {
	UpsertUser(ctx context.Context, user *journal.User) error
	GetUser(ctx context.Context, id string) (*journal.User, error)
	ListUsers(ctx context.Context) ([]journal.User, error)
}

// NotificationStore keeps a history of delivered notifications.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error)
}

// Store is the complete persistence surface of the gateway.
type Store interface {
	EntryStore
	UserStore
	NotificationStore
	Ping(ctx context.Context) error
	Close() error
}
