// ABOUTME: Draft/editor session: open, edit, save, delete, lock and unlock
// ABOUTME: Computes diff-based notifications after each persisted save

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/cafofo/internal/gate"
	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/notify"
	"github.com/2389/cafofo/internal/resolver"
	"github.com/2389/cafofo/internal/session"
)

var (
	ErrSaveInProgress   = errors.New("save already in progress")
	ErrDeleteInProgress = errors.New("entry is being deleted")
	ErrLocked           = errors.New("entry is password protected")
	ErrNoSelection      = errors.New("no entry selected")
	ErrEntryDeleted     = errors.New("entry was deleted")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

// EntryStore is the entry persistence the editor needs.
type EntryStore interface {
	resolver.EntrySource
	CreateEntry(ctx context.Context, entry *journal.Entry) (*journal.Entry, error)
	UpdateEntry(ctx context.Context, entry *journal.Entry) (*journal.Entry, error)
	DeleteEntry(ctx context.Context, id string) (string, error)
}

// Status is a point-in-time view of the session for display.
type Status struct {
	Selected bool
	UserID   string
	Date     journal.Date
	EntryID  string
	Gate     gate.State
	Failed   bool
	Dirty    bool
	Saving   bool
	Deleting bool
}

// Session owns one draft at a time on behalf of the acting user.
type Session struct {
	identity *session.Context
	store    EntryStore
	resolver *resolver.Resolver
	gate     *gate.Gate
	notifier *notify.Dispatcher
	logger   *slog.Logger

	mu       sync.Mutex
	selected bool
	ticket   resolver.Ticket
	snapshot *journal.Entry // last persisted state; nil for a new entry
	draft    journal.Draft
	saving   bool
	deleting string // entry id with a delete in flight
	deleted  map[string]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates an editor session. notifier may be nil to disable notifications.
func New(identity *session.Context, store EntryStore, notifier *notify.Dispatcher, opts ...Option) *Session {
	s := &Session{
		identity: identity,
		store:    store,
		gate:     gate.New(),
		notifier: notifier,
		logger:   slog.Default(),
		deleted:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "editor")
	s.resolver = resolver.New(store, s.logger)
	if s.notifier == nil {
		s.notifier = notify.NewDispatcher(nil, s.logger)
	}
	return s
}

// Resolver exposes the session's resolver for calendar decoration.
func (s *Session) Resolver() *resolver.Resolver {
	return s.resolver
}

// Open selects (userID, date). An existing entry is copied into the draft;
// otherwise the draft is blank. A protected entry leaves the draft hidden
// behind the gate and returns ErrLocked until Verify succeeds.
func (s *Session) Open(ctx context.Context, userID string, date journal.Date) (journal.Draft, error) {
	if _, err := s.identity.CurrentUser(); err != nil {
		return journal.Draft{}, err
	}

	entry, t, err := s.resolver.Select(ctx, userID, date)
	if errors.Is(err, journal.ErrStaleResponse) {
		return journal.Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.resolver.IsCurrent(t) {
		return journal.Draft{}, journal.ErrStaleResponse
	}
	if err != nil {
		s.clearLocked()
		return journal.Draft{}, err
	}

	s.selected = true
	s.ticket = t
	s.snapshot = entry
	if entry != nil {
		s.draft = journal.DraftFrom(entry)
	} else {
		s.draft = journal.NewDraft(userID, date)
	}

	if s.gate.Select(entry) == gate.Challenging {
		return journal.Draft{}, ErrLocked
	}
	return s.draft, nil
}

// Verify submits a password for the selected protected entry.
func (s *Session) Verify(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return ErrNoSelection
	}
	return s.gate.Submit(password)
}

// CancelChallenge abandons a pending password challenge and clears the selection.
func (s *Session) CancelChallenge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate.State() != gate.Challenging {
		return
	}
	s.gate.Cancel()
	s.clearLocked()
	s.resolver.Invalidate()
}

// Draft returns the current draft.
func (s *Session) Draft() (journal.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditableLocked(); err != nil {
		return journal.Draft{}, err
	}
	return s.draft, nil
}

// Edit changes one field of the draft. The store is not contacted.
func (s *Session) Edit(field journal.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditableLocked(); err != nil {
		return err
	}
	if err := s.checkIdleLocked(); err != nil {
		return err
	}
	return s.draft.Set(field, value)
}

// Restore copies the editable fields of a previously cached draft onto the
// open draft. The cached draft must be for the selected owner and date and
// must have been taken from the entry version that is open now; otherwise
// journal.ErrConflict is returned and nothing changes.
func (s *Session) Restore(cached journal.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditableLocked(); err != nil {
		return err
	}
	if err := s.checkIdleLocked(); err != nil {
		return err
	}
	if cached.UserID != s.draft.UserID || cached.Date != s.draft.Date {
		return fmt.Errorf("restoring draft for %s %s: %w", cached.UserID, cached.Date, journal.ErrConflict)
	}
	if cached.ID != s.draft.ID || cached.Version != s.draft.Version {
		return fmt.Errorf("restoring draft %q v%d over v%d: %w", cached.ID, cached.Version, s.draft.Version, journal.ErrConflict)
	}
	s.draft.Title = cached.Title
	s.draft.Content = cached.Content
	s.draft.Comment = cached.Comment
	s.draft.IsPasswordProtected = cached.IsPasswordProtected
	s.draft.Password = cached.Password
	return nil
}

// Dirty reports whether the draft differs from what was last persisted.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	if !s.selected {
		return false
	}
	if s.snapshot == nil {
		blank := journal.NewDraft(s.draft.UserID, s.draft.Date)
		return !journal.Diff(blank.Fields(), s.draft.Fields()).None()
	}
	return !journal.Diff(s.snapshot.Fields(), s.draft.Fields()).None()
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Selected: s.selected,
		UserID:   s.draft.UserID,
		Date:     s.draft.Date,
		EntryID:  s.draft.ID,
		Gate:     s.gate.State(),
		Failed:   s.gate.Failed(),
		Dirty:    s.dirtyLocked(),
		Saving:   s.saving,
		Deleting: s.deleting != "" && s.deleting == s.draft.ID,
	}
}

// Save persists the draft and emits the notification its changes call for.
func (s *Session) Save(ctx context.Context) (*journal.Entry, error) {
	actor, err := s.identity.CurrentUser()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if _, gone := s.deleted[s.draft.ID]; gone && !s.draft.IsNew() {
		s.mu.Unlock()
		return nil, ErrEntryDeleted
	}

	draft := s.draft
	ticket := s.ticket
	var change journal.Change
	if !draft.IsNew() {
		change = journal.Diff(s.snapshot.Fields(), draft.Fields())
		if change.None() {
			snapshot := s.snapshot.Clone()
			s.mu.Unlock()
			s.logger.Debug("skipping no-op save", "entry_id", draft.ID)
			return snapshot, nil
		}
	}
	s.saving = true
	s.mu.Unlock()

	saved, op, err := s.persist(ctx, draft)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) && !draft.IsNew() {
			s.deleted[draft.ID] = struct{}{}
		}
		s.mu.Unlock()
		s.logger.Warn("save failed", "op", op, "entry_id", draft.ID, "error", err)
		return nil, &journal.PersistenceError{Op: op, Err: err}
	}
	current := ticket == s.ticket && s.selected
	if current {
		s.snapshot = saved.Clone()
		s.draft = journal.DraftFrom(saved)
		s.gate.Admit(saved)
	}
	s.mu.Unlock()

	s.notifyChange(ctx, actor, draft, saved, change)

	if !current {
		return saved, journal.ErrStaleResponse
	}
	return saved, nil
}

// persist creates or updates draft and names the operation performed.
func (s *Session) persist(ctx context.Context, draft journal.Draft) (*journal.Entry, string, error) {
	if draft.IsNew() {
		saved, err := s.store.CreateEntry(ctx, draft.Entry())
		return saved, "create", err
	}
	saved, err := s.store.UpdateEntry(ctx, draft.Entry())
	return saved, "update", err
}

// notifyChange emits at most one notification kind for a persisted save.
func (s *Session) notifyChange(ctx context.Context, actor journal.User, draft journal.Draft, saved *journal.Entry, change journal.Change) {
	owner, ok := s.identity.Lookup(saved.UserID)
	if !ok {
		owner = journal.User{ID: saved.UserID}
	}

	switch {
	case draft.IsNew():
		s.notifyOthers(ctx, notify.Created, actor, owner, saved.Date)
	case change.Comment:
		s.notifier.Notify(ctx, notify.Commented, actor, owner, saved.Date, []journal.User{owner})
	case change.Other:
		s.notifyOthers(ctx, notify.Edited, actor, owner, saved.Date)
	}
}

func (s *Session) notifyOthers(ctx context.Context, kind notify.Kind, actor, owner journal.User, date journal.Date) {
	targets, err := s.identity.Others(owner.ID)
	if err != nil {
		s.logger.Warn("cannot resolve notification targets", "kind", string(kind), "error", err)
		return
	}
	s.notifier.Notify(ctx, kind, actor, owner, date, targets)
}

// Delete removes the selected entry. See DeleteEntry.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if !s.selected {
		s.mu.Unlock()
		return ErrNoSelection
	}
	id := s.draft.ID
	s.mu.Unlock()

	if id == "" {
		s.reset()
		return nil
	}
	return s.DeleteEntry(ctx, id)
}

// DeleteEntry removes entry id, whatever the gate state. Deleting while
// Challenging is allowed. The ID is remembered so no draft that still
// references it can be saved. The session returns to no selection when the
// deleted entry is still the one selected once the store answers.
func (s *Session) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoSelection
	}
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	if s.deleting != "" {
		s.mu.Unlock()
		return ErrDeleteInProgress
	}
	s.deleting = id
	ticket := s.ticket
	s.mu.Unlock()

	_, err := s.store.DeleteEntry(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleting = ""
	if err != nil {
		return &journal.PersistenceError{Op: "delete", Err: err}
	}
	s.deleted[id] = struct{}{}
	if s.ticket == ticket && s.resolver.IsCurrent(ticket) && (!s.selected || s.draft.ID == id) {
		s.clearLocked()
		s.gate.Reset()
		s.resolver.Invalidate()
	} else {
		s.logger.Debug("selection changed during delete", "entry_id", id)
	}

	s.logger.Info("entry deleted", "entry_id", id)
	return nil
}

// Lock protects the selected entry with password and saves.
func (s *Session) Lock(ctx context.Context, password string) (*journal.Entry, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if err := s.editMany(map[journal.Field]string{
		journal.FieldProtected: "true",
		journal.FieldPassword:  password,
	}); err != nil {
		return nil, err
	}
	return s.Save(ctx)
}

// Unlock removes protection from the selected entry and saves. The stored
// password is kept so protection can be re-enabled later.
func (s *Session) Unlock(ctx context.Context) (*journal.Entry, error) {
	if err := s.Edit(journal.FieldProtected, "false"); err != nil {
		return nil, err
	}
	return s.Save(ctx)
}

func (s *Session) editMany(fields map[journal.Field]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditableLocked(); err != nil {
		return err
	}
	if err := s.checkIdleLocked(); err != nil {
		return err
	}
	next := s.draft
	for f, v := range fields {
		if err := next.Set(f, v); err != nil {
			return fmt.Errorf("editing %s: %w", f, err)
		}
	}
	s.draft = next
	return nil
}

// Close abandons the selection, e.g. when navigating away or logging out.
func (s *Session) Close() {
	s.reset()
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.gate.Reset()
	s.resolver.Invalidate()
}

// Must be called with mu held.
func (s *Session) clearLocked() {
	s.selected = false
	s.snapshot = nil
	s.draft = journal.Draft{}
}

// checkIdleLocked rejects mutations while a save, or a delete of the
// selected entry, is in flight. Must be called with mu held.
func (s *Session) checkIdleLocked() error {
	if s.saving {
		return ErrSaveInProgress
	}
	if s.deleting != "" && s.deleting == s.draft.ID {
		return ErrDeleteInProgress
	}
	return nil
}

// Must be called with mu held.
func (s *Session) checkEditableLocked() error {
	if !s.selected {
		return ErrNoSelection
	}
	if !s.gate.Open() {
		return ErrLocked
	}
	return nil
}
