// ABOUTME: Password gate state machine guarding protected journal entries
// ABOUTME: Closed -> Challenging -> Verified with unlimited retries

// Package gate implements the password gate in front of protected entries.
//
// Comparison is literal and case-sensitive against the plaintext stored
// password. There is no attempt limit and no lockout; Attempts is exposed
// for display only.
package gate

import (
	"sync"

	"github.com/2389/cafofo/internal/journal"
)

// State is a gate state.
type State int

const (
	// Closed means no entry is selected or the selected entry is unprotected.
	Closed State = iota
	// Challenging means a protected entry is selected and not yet unlocked.
	Challenging
	// Verified means the correct password was supplied for the current selection.
	Verified
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Challenging:
		return "challenging"
	case Verified:
		return "verified"
	default:
		return "unknown"
	}
}

// Gate guards access to one selected entry at a time.
type Gate struct {
	mu       sync.Mutex
	state    State
	entry    *journal.Entry
	failed   bool
	attempts int
}

// New returns a closed gate.
func New() *Gate {
	return &Gate{}
}

// Select evaluates a newly selected entry. Protected entries always start
// Challenging, even if the same entry was verified before. A nil or
// unprotected entry leaves the gate Closed.
func (g *Gate) Select(entry *journal.Entry) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failed = false
	g.attempts = 0
	g.entry = entry.Clone()
	if entry != nil && entry.IsPasswordProtected {
		g.state = Challenging
	} else {
		g.state = Closed
	}
	return g.state
}

// Submit checks password against the selected entry. A mismatch keeps the
// gate Challenging, sets the error flag and returns ErrPasswordMismatch.
// Submitting outside Challenging is a no-op.
func (g *Gate) Submit(password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Challenging {
		return nil
	}
	g.attempts++
	if !g.entry.Unlocks(password) {
		g.failed = true
		return journal.ErrPasswordMismatch
	}
	g.failed = false
	g.state = Verified
	return nil
}

// Cancel abandons a challenge.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Challenging {
		g.resetLocked()
	}
}

// Reset forces the gate Closed and forgets the selection.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

func (g *Gate) resetLocked() {
	g.state = Closed
	g.entry = nil
	g.failed = false
	g.attempts = 0
}

// Admit marks the current selection as verified without a challenge. Used
// after the acting user sets a password within the session.
func (g *Gate) Admit(entry *journal.Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entry = entry.Clone()
	g.failed = false
	if entry != nil && entry.IsPasswordProtected {
		g.state = Verified
	} else {
		g.state = Closed
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Open reports whether the editor may show the selected entry.
func (g *Gate) Open() bool {
	return g.State() != Challenging
}

// Failed reports whether the last submission was wrong.
func (g *Gate) Failed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed
}

// Attempts returns the number of submissions since the last Select.
func (g *Gate) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}
