// ABOUTME: HTTP API handlers for journal entries and users
// ABOUTME: Maps store errors to status codes and writes JSON or SSE responses

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389/cafofo/internal/auth"
	"github.com/2389/cafofo/internal/journal"
	"github.com/2389/cafofo/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Error codes carried next to the message so clients can tell 409s apart.
const (
	codeNotFound        = "not_found"
	codeDuplicate       = "duplicate"
	codeVersionConflict = "version_conflict"
)

// DeleteResponse acknowledges DELETE /entries/{id}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// errorResponse is the body of every JSON error.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleListUsers handles GET /users.
func (g *Gateway) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := g.store.ListUsers(r.Context())
	if err != nil {
		g.logger.Error("failed to list users", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if users == nil {
		users = []journal.User{}
	}
	g.writeJSON(w, http.StatusOK, users)
}

// handleGetEntries handles GET /entries?userId=[&date=].
// Without date it returns calendar summaries; with date it returns an array
// of zero or one full entries.
func (g *Gateway) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		summaries, err := g.store.ListEntries(r.Context(), userID)
		if err != nil {
			g.logger.Error("failed to list entries", "user_id", userID, "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if summaries == nil {
			summaries = []journal.Summary{}
		}
		g.writeJSON(w, http.StatusOK, summaries)
		return
	}

	date, err := journal.ParseDate(rawDate)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q", rawDate))
		return
	}

	entry, err := g.store.GetEntryByDate(r.Context(), userID, date)
	if errors.Is(err, store.ErrNotFound) {
		g.writeJSON(w, http.StatusOK, []journal.Entry{})
		return
	}
	if err != nil {
		g.logger.Error("failed to get entry", "user_id", userID, "date", rawDate, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, []*journal.Entry{entry})
}

// handleCreateEntry handles POST /entries.
func (g *Gateway) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if entry.UserID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if entry.Date.IsZero() {
		g.sendJSONError(w, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := g.store.GetUser(r.Context(), entry.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown user %q", entry.UserID))
			return
		}
		g.logger.Error("failed to look up user", "user_id", entry.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entry.ID = ""
	if err := g.store.CreateEntry(r.Context(), entry); err != nil {
		g.sendStoreError(w, "create entry", err)
		return
	}

	g.logger.Info("entry created",
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"date", entry.Date.String(),
		"actor", actorID(r),
	)
	g.writeJSON(w, http.StatusCreated, entry)
}

// handleUpdateEntry handles PUT /entries/{id}.
func (g *Gateway) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := decodeEntry(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if entry.ID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	if entry.ID != id {
		g.sendJSONError(w, http.StatusBadRequest, "id does not match path")
		return
	}

	if err := g.store.UpdateEntry(r.Context(), entry); err != nil {
		g.sendStoreError(w, "update entry", err)
		return
	}

	g.logger.Info("entry updated", "entry_id", entry.ID, "version", entry.Version, "actor", actorID(r))
	g.writeJSON(w, http.StatusOK, entry)
}

// handleDeleteEntry handles DELETE /entries/{id}.
func (g *Gateway) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := g.store.DeleteEntry(r.Context(), id); err != nil {
		g.sendStoreError(w, "delete entry", err)
		return
	}

	g.logger.Info("entry deleted", "entry_id", id, "actor", actorID(r))
	g.writeJSON(w, http.StatusOK, DeleteResponse{Success: true, ID: id})
}

// decodeEntry parses an entry body.
func decodeEntry(body io.Reader) (*journal.Entry, error) {
	var entry journal.Entry
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&entry); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &entry, nil
}

// actorID names the authenticated user for logs, or "anonymous".
func actorID(r *http.Request) string {
	if a := auth.FromContext(r.Context()); a != nil {
		return a.UserID
	}
	return "anonymous"
}

// sendStoreError maps store errors to HTTP responses.
func (g *Gateway) sendStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		g.writeJSON(w, http.StatusNotFound, errorResponse{Error: "entry not found", Code: codeNotFound})
	case errors.Is(err, store.ErrDuplicateEntry):
		g.writeJSON(w, http.StatusConflict, errorResponse{Error: "entry already exists for this date", Code: codeDuplicate})
	case errors.Is(err, store.ErrVersionConflict):
		g.writeJSON(w, http.StatusConflict, errorResponse{Error: "entry was modified since it was opened", Code: codeVersionConflict})
	default:
		g.logger.Error("store operation failed", "op", op, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes v as a JSON response.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// writeSSEEvent writes a single SSE event to the response writer.
func (g *Gateway) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	g.writeJSON(w, status, errorResponse{Error: message})
}
