// ABOUTME: In-memory Sender that records events
// ABOUTME: Used by tests and by the CLI's --dry-run flag

package notify

import (
	"context"
	"sync"
)

// Recorder is a Sender that keeps every event it is given. Setting Err makes
// Send fail after recording.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

// Send records e.
func (r *Recorder) Send(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
