// ABOUTME: Tests for HTTP authentication middleware
// ABOUTME: Covers token extraction, validation and user lookup

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/store"
)

type mockUserLookup struct {
	users map[string]*journal.User
}

func (m *mockUserLookup) GetUser(ctx context.Context, id string) (*journal.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func testUsers() *mockUserLookup {
	return &mockUserLookup{users: map[string]*journal.User{
		"A": {ID: "A", Name: "Ana"},
	}}
}

func runMiddleware(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *AuthContext) {
	t.Helper()
	var got *AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	HTTPAuthMiddleware(testUsers(), newTestVerifier(t))(handler).ServeHTTP(rec, req)
	return rec, got
}

func TestHTTPAuthMiddleware_ValidToken(t *testing.T) {
	token, _ := newTestVerifier(t).Generate("A", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/entries?userId=A", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, got := runMiddleware(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "A" || got.Name != "Ana" {
		t.Errorf("unexpected auth context: %+v", got)
	}
}

func TestHTTPAuthMiddleware_QueryToken(t *testing.T) {
	token, _ := newTestVerifier(t).Generate("A", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/notifications/stream?userId=A&access_token="+token, nil)
	rec, got := runMiddleware(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "A" {
		t.Errorf("unexpected auth context: %+v", got)
	}
}

func TestHTTPAuthMiddleware_Rejections(t *testing.T) {
	verifier := newTestVerifier(t)
	unknown, _ := verifier.Generate("Z", time.Hour)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Basic abc", "invalid authorization header format"},
		{"empty token", "Bearer ", "empty token"},
		{"bad token", "Bearer nope", "invalid token"},
		{"unknown user", "Bearer " + unknown, "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec, got := runMiddleware(t, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if got != nil {
				t.Error("handler should not run")
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantMsg)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
