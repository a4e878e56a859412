// ABOUTME: Entry resolver mapping (user, date) to an entry or absence
// ABOUTME: Guards selections with monotonically increasing tickets

// Package resolver turns calendar selections into entries.
//
// Resolve treats a missing entry as a normal outcome and returns (nil, nil).
// Select wraps Resolve with a ticket: every call takes a new, larger ticket
// and a result whose ticket has been superseded by a later Select (or by
// Invalidate) is discarded with journal.ErrStaleResponse. Callers are
// expected to drop that error without reporting it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/cafofo/internal/journal"
)

// EntrySource is the read side of the entry store.
type EntrySource interface {
	ListEntries(ctx context.Context, userID string) ([]journal.Summary, error)
	GetEntryByDate(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error)
}

// Ticket identifies one selection. Later selections have larger tickets.
type Ticket uint64

// Resolver resolves entries and tracks the current selection.
type Resolver struct {
	src    EntrySource
	logger *slog.Logger

	mu      sync.Mutex
	current Ticket
}

// New creates a resolver over src. Pass nil logger for default.
func New(src EntrySource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		src:    src,
		logger: logger.With("component", "resolver"),
	}
}

// ListEntries returns calendar summaries for userID. No side effects.
func (r *Resolver) ListEntries(ctx context.Context, userID string) ([]journal.Summary, error) {
	list, err := r.src.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return list, nil
}

// Resolve returns the entry for (userID, date), or nil when none exists.
func (r *Resolver) Resolve(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error) {
	e, err := r.src.GetEntryByDate(ctx, userID, date)
	if errors.Is(err, journal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s for %s: %w", date, userID, err)
	}
	return e, nil
}

// Begin starts a new selection and returns its ticket.
func (r *Resolver) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current++
	return r.current
}

// IsCurrent reports whether t is still the latest selection.
func (r *Resolver) IsCurrent(t Ticket) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return t == r.current
}

// Invalidate supersedes every outstanding selection, e.g. on navigation
// away. In-flight requests still complete; their results are dropped.
func (r *Resolver) Invalidate() {
	r.Begin()
}

// Select resolves (userID, date) as the new current selection. If another
// selection began while the request was in flight the result is dropped and
// journal.ErrStaleResponse is returned.
func (r *Resolver) Select(ctx context.Context, userID string, date journal.Date) (*journal.Entry, Ticket, error) {
	t := r.Begin()
	e, err := r.Resolve(ctx, userID, date)
	if !r.IsCurrent(t) {
		r.logger.Debug("dropping stale resolve", "user_id", userID, "date", date.String(), "ticket", uint64(t))
		return nil, t, journal.ErrStaleResponse
	}
	if err != nil {
		return nil, t, err
	}
	return e, t, nil
}

// ByDate indexes summaries by day for calendar decoration.
func ByDate(summaries []journal.Summary) map[journal.Date]journal.Summary {
	out := make(map[journal.Date]journal.Summary, len(summaries))
	for _, s := range summaries {
		out[s.Date] = s
	}
	return out
}
