// ABOUTME: Error taxonomy shared by the editor core and its adapters
// ABOUTME: Persistence failures wrap their cause in *PersistenceError

package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no entry exists for the requested key. Resolving a
	// date with no entry is not a failure; callers fall back to a blank draft.
	ErrNotFound = errors.New("entry not found")

	// ErrPasswordMismatch is returned by the password gate on a wrong guess.
	ErrPasswordMismatch = errors.New("incorrect password")

	// ErrStaleResponse marks a result whose selection is no longer current.
	// Callers drop it silently.
	ErrStaleResponse = errors.New("stale response")

	// ErrConflict means the entry changed after the draft was opened.
	ErrConflict = errors.New("entry was modified since it was opened")

	// ErrDuplicate means an entry already exists for the (user, date) pair.
	ErrDuplicate = errors.New("entry already exists for this date")

	// ErrPersistence matches any *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a save or delete failure.
type PersistenceError struct {
	Op  string // "create", "update", "delete"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s entry: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) true for every PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
