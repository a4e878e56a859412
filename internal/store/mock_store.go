// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/cafofo/internal/journal"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu            sync.RWMutex
	entries       map[string]*journal.Entry // keyed by entry ID
	entryIndex    map[string]string         // keyed by "userID:date" -> entry ID
	users         map[string]*journal.User  // keyed by user ID
	userOrder     []string
	notifications []*Notification

	// Calls counts store operations by method name.
	Calls map[string]int

	// FailNext, when set, is returned by the next mutating call and cleared.
	FailNext error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		entries:    make(map[string]*journal.Entry),
		entryIndex: make(map[string]string),
		users:      make(map[string]*journal.User),
		Calls:      make(map[string]int),
	}
}

func entryKey(userID string, date journal.Date) string {
	return userID + ":" + date.String()
}

// CallCount returns how many times method was called.
func (m *MockStore) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[method]
}

// takeFailure must be called with mu held.
func (m *MockStore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

// CreateEntry stores a new entry.
func (m *MockStore) CreateEntry(ctx context.Context, entry *journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["CreateEntry"]++

	if err := m.takeFailure(); err != nil {
		return err
	}

	key := entryKey(entry.UserID, entry.Date)
	if _, exists := m.entryIndex[key]; exists {
		return ErrDuplicateEntry
	}

	now := time.Now().UTC()
	entry.ID = uuid.New().String()
	entry.Version = 1
	entry.CreatedAt = now
	entry.UpdatedAt = now

	m.entries[entry.ID] = entry.Clone()
	m.entryIndex[key] = entry.ID
	return nil
}

// GetEntry retrieves an entry by ID.
func (m *MockStore) GetEntry(ctx context.Context, id string) (*journal.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

// GetEntryByDate retrieves the entry for (userID, date).
func (m *MockStore) GetEntryByDate(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.entryIndex[entryKey(userID, date)]
	if !ok {
		return nil, ErrNotFound
	}
	return m.entries[id].Clone(), nil
}

// ListEntries returns summaries for userID ordered by date.
func (m *MockStore) ListEntries(ctx context.Context, userID string) ([]journal.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []journal.Summary{}
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// UpdateEntry replaces editable fields with the same version rules as SQLiteStore.
func (m *MockStore) UpdateEntry(ctx context.Context, entry *journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["UpdateEntry"]++

	if err := m.takeFailure(); err != nil {
		return err
	}

	stored, ok := m.entries[entry.ID]
	if !ok {
		return ErrNotFound
	}
	if entry.Version != 0 && entry.Version != stored.Version {
		return ErrVersionConflict
	}

	stored.Title = entry.Title
	stored.Content = entry.Content
	stored.Comment = entry.Comment
	stored.IsPasswordProtected = entry.IsPasswordProtected
	stored.Password = entry.Password
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()

	*entry = *stored.Clone()
	return nil
}

// DeleteEntry removes an entry.
func (m *MockStore) DeleteEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["DeleteEntry"]++

	if err := m.takeFailure(); err != nil {
		return err
	}

	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.entryIndex, entryKey(e.UserID, e.Date))
	delete(m.entries, id)
	return nil
}

// UpsertUser inserts or updates a user.
func (m *MockStore) UpsertUser(ctx context.Context, user *journal.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		return errors.New("user id is required")
	}
	if _, exists := m.users[user.ID]; !exists {
		m.userOrder = append(m.userOrder, user.ID)
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*journal.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// ListUsers returns users in insertion order.
func (m *MockStore) ListUsers(ctx context.Context) ([]journal.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]journal.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, *m.users[id])
	}
	return out, nil
}

// SaveNotification records a notification.
func (m *MockStore) SaveNotification(ctx context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	c := *n
	m.notifications = append(m.notifications, &c)
	return nil
}

// ListNotifications returns the newest notifications for userID.
func (m *MockStore) ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	var out []*Notification
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := m.notifications[i]; n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (m *MockStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

var (
	_ Store = (*MockStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
