// ABOUTME: In-memory fan-out of notifications to connected clients
// ABOUTME: Publishes stored notifications to every live stream of the recipient

// Package broadcast fans out notifications to the SSE streams a user has
// open. Delivery is best effort: a subscriber whose buffer is full misses
// the event and can catch up from the notification history.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/2389/cafofo/internal/store"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// Broadcaster is an in-memory pub/sub keyed by recipient user ID.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan *store.Notification // userID -> subID -> ch
	closed      bool
	logger      *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default.
func New(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan *store.Notification),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a stream for notifications addressed to userID.
// The subscription is removed and its channel closed when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, userID string) (<-chan *store.Notification, string) {
	subID := uuid.New().String()
	ch := make(chan *store.Notification, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	if _, ok := b.subscribers[userID]; !ok {
		b.subscribers[userID] = make(map[string]chan *store.Notification)
	}
	b.subscribers[userID][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "user_id", userID, "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(userID, subID)
	}()

	return ch, subID
}

// Publish delivers n to every stream of n.UserID and returns how many
// received it. Non-blocking: full subscribers are skipped.
func (b *Broadcaster) Publish(n *store.Notification) int {
	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for subID, ch := range b.subscribers[n.UserID] {
		select {
		case ch <- n:
			delivered++
		default:
			b.logger.Debug("dropped notification for slow subscriber",
				"user_id", n.UserID,
				"sub_id", subID,
				"notification_id", n.ID)
		}
	}
	return delivered
}

// Subscribers returns the number of open streams for userID.
func (b *Broadcaster) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(userID, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[userID]
	if !ok {
		return
	}
	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(b.subscribers, userID)
	}

	b.logger.Debug("subscriber removed", "user_id", userID, "sub_id", subID)
}

// Close closes every subscriber channel. Later subscriptions receive an
// already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for userID, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, userID)
	}
	b.closed = true

	b.logger.Debug("broadcaster closed")
}
