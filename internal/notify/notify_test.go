// ABOUTME: Tests for notification composition and dispatch
// ABOUTME: Covers Portuguese bodies, page URLs and swallowed send failures

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cafofo/internal/client"
	"github.com/2389/cafofo/internal/journal"
)

var (
	ana   = journal.User{ID: "A", Name: "Ana", Pronoun: journal.PronounFeminine}
	bruno = journal.User{ID: "B", Name: "Bruno", Pronoun: journal.PronounMasculine}
	day   = journal.MustParseDate("2024-01-15")
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		actor    journal.User
		owner    journal.User
		target   journal.User
		wantBody string
	}{
		{"created", Created, ana, ana, bruno, "A Ana escreveu no diário do dia 15/01/2024"},
		{"edited by owner", Edited, bruno, bruno, ana, "O Bruno editou a página do dia 15/01/2024"},
		{"edited by other", Edited, bruno, ana, ana, "O Bruno editou a página da Ana do dia 15/01/2024"},
		{"commented to owner", Commented, bruno, ana, ana, "O Bruno comentou na sua página do dia 15/01/2024"},
		{"no pronoun", Created, journal.User{ID: "C", Name: "Cris"}, journal.User{ID: "C"}, ana, "Cris escreveu no diário do dia 15/01/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Compose(tt.kind, tt.actor, tt.owner, tt.target, day)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.wantBody, e.Body)
			assert.Equal(t, tt.target.ID, e.TargetUserID)
			assert.Equal(t, tt.actor.ID, e.SenderID)
			assert.NotEmpty(t, e.Title)
		})
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/journal/page?date=2024-01-15&userId=A", PageURL("A", day))
	assert.Equal(t, "/journal/page?date=2024-01-15", PageURL("", day))
}

func TestDispatcher_Notify(t *testing.T) {
	rec := &Recorder{}
	d := NewDispatcher(rec, nil)

	events := d.Notify(context.Background(), Created, ana, ana, day, []journal.User{bruno})
	require.Len(t, events, 1)
	assert.Equal(t, events, rec.Events())
	assert.Equal(t, "B", rec.Events()[0].TargetUserID)

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestDispatcher_FailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := &Recorder{Err: errors.New("push service down")}
	d := NewDispatcher(rec, logger)

	events := d.Notify(context.Background(), Edited, ana, ana, day, []journal.User{bruno})
	assert.Len(t, events, 1)
	assert.Contains(t, buf.String(), "notification failed")
	assert.Contains(t, buf.String(), "push service down")
}

func TestDispatcher_NilSender(t *testing.T) {
	d := NewDispatcher(nil, nil)
	d.Emit(context.Background(), Event{Kind: Created})
}

func TestClientSender(t *testing.T) {
	var got client.Notification
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get(client.IdempotencyHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"n1","delivered":1}`))
	}))
	defer srv.Close()

	s := ClientSender{Client: client.New(srv.URL)}
	e := Compose(Commented, bruno, ana, ana, day)
	require.NoError(t, s.Send(context.Background(), e))

	assert.Equal(t, "A", got.UserID)
	assert.Equal(t, "B", got.SenderID)
	assert.Equal(t, "commented", got.Kind)
	assert.Equal(t, e.Body, got.Body)
	assert.Equal(t, e.URL, got.URL)
	assert.NotEmpty(t, key)
}
