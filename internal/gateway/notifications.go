// ABOUTME: HTTP handlers for posting, listing and streaming notifications
// ABOUTME: Posts are deduplicated by Idempotency-Key and fanned out over SSE

package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/2389/cafofo/internal/auth"
	"github.com/2389/cafofo/internal/client"
	"github.com/2389/cafofo/internal/dedupe"
	"github.com/2389/cafofo/internal/store"
)

// maxHistoryLimit caps GET /notifications?limit=.
const maxHistoryLimit = 500

// NotificationPayload is the wire form of a notification.
type NotificationPayload struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	SenderID  string    `json:"senderId,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendNotificationResponse answers POST /notifications.
type SendNotificationResponse struct {
	ID        string `json:"id"`
	Delivered int    `json:"delivered"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func toPayload(n *store.Notification) NotificationPayload {
	return NotificationPayload{
		ID:        n.ID,
		UserID:    n.UserID,
		SenderID:  n.SenderID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		URL:       n.URL,
		CreatedAt: n.CreatedAt,
	}
}

// canAccess reports whether the request may read userID's notifications.
// Everything is allowed when auth is disabled.
func (g *Gateway) canAccess(r *http.Request, userID string) bool {
	if g.verifier == nil {
		return true
	}
	return auth.FromContext(r.Context()).CanActFor(userID)
}

// handleSendNotification handles POST /notifications.
func (g *Gateway) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req NotificationPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Body == "" {
		g.sendJSONError(w, http.StatusBadRequest, "body is required")
		return
	}

	if a := auth.FromContext(r.Context()); a != nil {
		if req.SenderID != "" && req.SenderID != a.UserID {
			g.sendJSONError(w, http.StatusForbidden, "senderId does not match token")
			return
		}
		req.SenderID = a.UserID
	}

	n := &store.Notification{
		ID:       uuid.New().String(),
		UserID:   req.UserID,
		SenderID: req.SenderID,
		Kind:     req.Kind,
		Title:    req.Title,
		Body:     req.Body,
		URL:      req.URL,
	}

	var dedupeKey string
	if idem := r.Header.Get(client.IdempotencyHeader); idem != "" {
		dedupeKey = dedupe.Key(req.UserID, idem)
		if existing, dup := g.dedupe.Claim(dedupeKey, n.ID); dup {
			g.logger.Debug("duplicate notification suppressed", "user_id", req.UserID, "id", existing)
			g.writeJSON(w, http.StatusOK, SendNotificationResponse{ID: existing, Duplicate: true})
			return
		}
	}

	if err := g.store.SaveNotification(r.Context(), n); err != nil {
		if dedupeKey != "" {
			g.dedupe.Forget(dedupeKey)
		}
		g.logger.Error("failed to save notification", "user_id", req.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	delivered := g.broadcaster.Publish(n)
	g.logger.Info("notification sent",
		"id", n.ID,
		"user_id", n.UserID,
		"sender_id", n.SenderID,
		"kind", n.Kind,
		"delivered", delivered,
	)
	g.writeJSON(w, http.StatusCreated, SendNotificationResponse{ID: n.ID, Delivered: delivered})
}

// handleListNotifications handles GET /notifications?userId=&limit=.
func (g *Gateway) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if !g.canAccess(r, userID) {
		g.sendJSONError(w, http.StatusForbidden, "cannot read another user's notifications")
		return
	}

	limit := g.config.Notifications.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			g.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit <= 0 {
		limit = store.DefaultNotificationLimit
	}
	limit = min(limit, maxHistoryLimit)

	list, err := g.store.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		g.logger.Error("failed to list notifications", "user_id", userID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]NotificationPayload, len(list))
	for i, n := range list {
		out[i] = toPayload(n)
	}
	g.writeJSON(w, http.StatusOK, out)
}

// handleNotificationStream handles GET /notifications/stream?userId=.
// It streams "notification" events until the client disconnects or the
// gateway shuts down, with comment heartbeats in between.
func (g *Gateway) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if !g.canAccess(r, userID) {
		g.sendJSONError(w, http.StatusForbidden, "cannot follow another user's notifications")
		return
	}

	// Check streaming support before subscribing (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	events, subID := g.broadcaster.Subscribe(ctx, userID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	g.writeSSEEvent(w, "ready", map[string]string{"userId": userID, "subscription": subID})
	flusher.Flush()

	interval := g.config.Notifications.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case n, ok := <-events:
			if !ok {
				return
			}
			g.writeSSEEvent(w, "notification", toPayload(n))
			flusher.Flush()
		}
	}
}
