// ABOUTME: Notification history persistence for SQLiteStore
// ABOUTME: Stores every notification the gateway fans out, newest first on read

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultNotificationLimit bounds ListNotifications when limit <= 0
const DefaultNotificationLimit = 50

// SaveNotification stores a notification, assigning ID and CreatedAt when empty
func (s *SQLiteStore) SaveNotification(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, sender_id, kind, title, body, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.SenderID, n.Kind, n.Title, n.Body, n.URL, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListNotifications returns the most recent notifications for a recipient
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, sender_id, kind, title, body, url, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var (
			n         Notification
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Kind, &n.Title, &n.Body, &n.URL, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		out = append(out, &n)
	}
	return out, rows.Err()
}
