// ABOUTME: Tests for the gateway API client against an httptest server
// ABOUTME: Covers request shapes, auth header, error mapping and SSE parsing

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cafofo/internal/journal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithToken("tok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_GetEntryByDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/entries", r.URL.Path)
		assert.Equal(t, "A", r.URL.Query().Get("userId"))

		if r.URL.Query().Get("date") == "2024-01-15" {
			writeJSON(w, http.StatusOK, []map[string]any{{
				"id": "e1", "userId": "A", "date": "2024-01-15", "title": "Dia bom", "version": 2,
			}})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})

	e, err := c.GetEntryByDate(context.Background(), "A", journal.MustParseDate("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Dia bom", e.Title)
	assert.Equal(t, int64(2), e.Version)

	_, err = c.GetEntryByDate(context.Background(), "A", journal.MustParseDate("2024-01-16"))
	assert.ErrorIs(t, err, journal.ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestClient_ListEntries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "e1", "date": "2024-01-15", "isPasswordProtected": true},
			{"id": "e2", "date": "2024-01-16", "isPasswordProtected": false},
		})
	})

	list, err := c.ListEntries(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsPasswordProtected)
	assert.Equal(t, "2024-01-16", list[1].Date.String())
}

func TestClient_CreateEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "A", body["userId"])
		assert.Equal(t, "2024-01-15", body["date"])
		assert.Equal(t, "Dia bom", body["title"])
		assert.NotContains(t, body, "id")

		body["id"] = "new-id"
		body["version"] = 1
		writeJSON(w, http.StatusCreated, body)
	})

	d := journal.NewDraft("A", journal.MustParseDate("2024-01-15"))
	d.Title = "Dia bom"
	e, err := c.CreateEntry(context.Background(), d.Entry())
	require.NoError(t, err)
	assert.Equal(t, "new-id", e.ID)
	assert.Equal(t, int64(1), e.Version)
}

func TestClient_UpdateEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/entries/e1", r.URL.Path)
		var body entryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "e1", body.ID)
		assert.Equal(t, int64(3), body.Version)
		body.Version++
		writeJSON(w, http.StatusOK, body)
	})

	e, err := c.UpdateEntry(context.Background(), &journal.Entry{ID: "e1", UserID: "A", Version: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.Version)

	_, err = c.UpdateEntry(context.Background(), &journal.Entry{})
	assert.Error(t, err)
}

func TestClient_DeleteEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, DeleteResponse{Success: true, ID: "e1"})
	})

	id, err := c.DeleteEntry(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", id)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"not found", http.StatusNotFound, map[string]string{"error": "entry not found"}, journal.ErrNotFound},
		{"duplicate", http.StatusConflict, map[string]string{"error": "exists", "code": "duplicate"}, journal.ErrDuplicate},
		{"version conflict", http.StatusConflict, map[string]string{"error": "stale", "code": "conflict"}, journal.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.UpdateEntry(context.Background(), &journal.Entry{ID: "e1"})
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_PlainTextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListUsers(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
	assert.NotErrorIs(t, err, journal.ErrNotFound)
}

func TestClient_SendNotification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))
		var n Notification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		assert.Equal(t, "B", n.UserID)
		assert.Equal(t, "/journal/page?date=2024-01-15", n.URL)
		writeJSON(w, http.StatusCreated, SendResult{ID: "n1", Delivered: 1})
	})

	res, err := c.SendNotification(context.Background(), Notification{
		UserID: "B", Body: "Ana escreveu", URL: "/journal/page?date=2024-01-15",
	}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "n1", res.ID)
}

func TestClient_StreamNotifications(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "B", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: ready\ndata: {}\n\n")
		fmt.Fprint(w, "event: notification\ndata: {\"id\":\"n1\",\"userId\":\"B\",\"body\":\"oi\",\"url\":\"/x\"}\n\n")
		fmt.Fprint(w, "event: notification\ndata: not-json\n\n")
		flusher.Flush()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got []Notification
	err := c.StreamNotifications(ctx, "B", func(n Notification) { got = append(got, n) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, "oi", got[0].Body)
}

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte("OK"))
	})
	require.NoError(t, c.Health(context.Background()))
}
