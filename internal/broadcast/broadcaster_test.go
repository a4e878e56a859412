// ABOUTME: Tests for the notification broadcaster
// ABOUTME: Covers per-user routing, context cleanup, slow subscribers and close

package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cafofo/internal/store"
)

func note(id, userID string) *store.Notification {
	return &store.Notification{ID: id, UserID: userID, Kind: store.NotificationEdited, Body: "hello " + id}
}

func receive(t *testing.T, ch <-chan *store.Notification) *store.Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestBroadcaster_RoutesByRecipient(t *testing.T) {
	b := New(nil)
	defer b.Close()

	chA, _ := b.Subscribe(t.Context(), "A")
	chA2, _ := b.Subscribe(t.Context(), "A")
	chB, _ := b.Subscribe(t.Context(), "B")

	assert.Equal(t, 2, b.Publish(note("n1", "A")))

	assert.Equal(t, "n1", receive(t, chA).ID)
	assert.Equal(t, "n1", receive(t, chA2).ID)

	select {
	case n := <-chB:
		t.Fatalf("B should not receive A's notification: %v", n)
	default:
	}
}

func TestBroadcaster_NoSubscribers(t *testing.T) {
	b := New(nil)
	defer b.Close()
	assert.Equal(t, 0, b.Publish(note("n1", "nobody")))
}

func TestBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	b := New(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, "A")
	require.Equal(t, 1, b.Subscribers("A"))

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Equal(t, 0, b.Subscribers("A"))
}

func TestBroadcaster_SlowSubscriberDrops(t *testing.T) {
	b := New(nil)
	defer b.Close()

	_, _ = b.Subscribe(t.Context(), "A")
	for i := 0; i < subscriberBufferSize; i++ {
		require.Equal(t, 1, b.Publish(note("fill", "A")))
	}
	assert.Equal(t, 0, b.Publish(note("overflow", "A")))
}

func TestBroadcaster_UnsubscribeTwice(t *testing.T) {
	b := New(nil)
	defer b.Close()

	_, id := b.Subscribe(t.Context(), "A")
	b.Unsubscribe("A", id)
	b.Unsubscribe("A", id)
	b.Unsubscribe("missing", id)
}

func TestBroadcaster_Close(t *testing.T) {
	b := New(nil)
	ch, _ := b.Subscribe(t.Context(), "A")
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe(t.Context(), "A")
	_, ok = <-late
	assert.False(t, ok)
}
