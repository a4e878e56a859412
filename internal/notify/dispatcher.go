// ABOUTME: Fire-and-forget notification dispatcher
// ABOUTME: Sends composed events through a Sender and logs, never returns, failures

package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/2389/cafofo/internal/client"
	"github.com/2389/cafofo/internal/journal"
)

// Sender delivers one event.
type Sender interface {
	Send(ctx context.Context, e Event) error
}

// Dispatcher emits notification events.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil sender discards every event.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender: sender,
		logger: logger.With("component", "notify"),
	}
}

// Emit sends e. Failures are logged and swallowed.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if d.sender == nil {
		return
	}
	if err := d.sender.Send(ctx, e); err != nil {
		d.logger.Warn("notification failed",
			"kind", string(e.Kind),
			"target_user_id", e.TargetUserID,
			"error", err)
		return
	}
	d.logger.Debug("notification sent", "kind", string(e.Kind), "target_user_id", e.TargetUserID)
}

// Notify composes one event per target and emits each. It returns the
// composed events whether or not delivery succeeded.
func (d *Dispatcher) Notify(ctx context.Context, kind Kind, actor, owner journal.User, date journal.Date, targets []journal.User) []Event {
	events := make([]Event, 0, len(targets))
	for _, target := range targets {
		e := Compose(kind, actor, owner, target, date)
		d.Emit(ctx, e)
		events = append(events, e)
	}
	return events
}

// ClientSender posts events to the gateway's /notifications endpoint with a
// fresh idempotency key per event.
type ClientSender struct {
	Client *client.Client
}

// Send implements Sender.
func (s ClientSender) Send(ctx context.Context, e Event) error {
	_, err := s.Client.SendNotification(ctx, client.Notification{
		UserID:   e.TargetUserID,
		SenderID: e.SenderID,
		Kind:     string(e.Kind),
		Title:    e.Title,
		Body:     e.Body,
		URL:      e.URL,
	}, uuid.New().String())
	return err
}
