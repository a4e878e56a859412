// ABOUTME: Explicit per-session identity context for the journal editor
// ABOUTME: Tracks current user and audience; torn down explicitly on logout

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2389/cafofo/internal/journal"
)

var (
	// ErrClosed is returned by identity lookups after Close.
	ErrClosed = errors.New("session closed")

	// ErrUnknownUser means the requested user is not in the directory.
	ErrUnknownUser = errors.New("unknown user")
)

// Directory lists the journal audience.
type Directory interface {
	ListUsers(ctx context.Context) ([]journal.User, error)
}

// Context is the acting identity plus the audience it shares the journal with.
type Context struct {
	mu       sync.RWMutex
	current  journal.User
	audience []journal.User
	closed   bool
}

// New creates a session for current. The audience should include current.
func New(current journal.User, audience []journal.User) (*Context, error) {
	if current.ID == "" {
		return nil, errors.New("current user id is required")
	}
	users := make([]journal.User, len(audience))
	copy(users, audience)
	return &Context{current: current, audience: users}, nil
}

// Start loads the audience from dir and opens a session for userID.
func Start(ctx context.Context, dir Directory, userID string) (*Context, error) {
	users, err := dir.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	for _, u := range users {
		if u.ID == userID {
			return New(u, users)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
}

// CurrentUser returns the acting user.
func (c *Context) CurrentUser() (journal.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return journal.User{}, ErrClosed
	}
	return c.current, nil
}

// Audience returns a copy of every user sharing the journal.
func (c *Context) Audience() []journal.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	users := make([]journal.User, len(c.audience))
	copy(users, c.audience)
	return users
}

// Lookup finds an audience member by ID.
func (c *Context) Lookup(id string) (journal.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.audience {
		if u.ID == id {
			return u, true
		}
	}
	return journal.User{}, false
}

// Others returns every audience member except ownerID.
func (c *Context) Others(ownerID string) ([]journal.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	var out []journal.User
	for _, u := range c.audience {
		if u.ID != ownerID {
			out = append(out, u)
		}
	}
	return out, nil
}

// Close ends the session. Later identity lookups fail with ErrClosed.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// OtherUser returns the one user in users that is not currentUserID.
// It reports false when the answer is not unique.
func OtherUser(users []journal.User, currentUserID string) (journal.User, bool) {
	var (
		found journal.User
		n     int
	)
	for _, u := range users {
		if u.ID == currentUserID {
			continue
		}
		found = u
		n++
	}
	if n != 1 {
		return journal.User{}, false
	}
	return found, true
}

type sessionContextKey struct{}

// WithContext attaches s to ctx.
func WithContext(ctx context.Context, s *Context) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Context {
	s, _ := ctx.Value(sessionContextKey{}).(*Context)
	return s
}
