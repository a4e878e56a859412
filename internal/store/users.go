// ABOUTME: User directory persistence for SQLiteStore
// ABOUTME: Users are seeded from configuration and read by clients

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/2389/cafofo/internal/journal"
)

// UpsertUser inserts a user or updates its profile fields
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *journal.User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, avatar, pronoun, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar = excluded.avatar,
			pronoun = excluded.pronoun,
			updated_at = excluded.updated_at
	`, user.ID, user.Name, user.Avatar, user.Pronoun, now, now)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*journal.User, error) {
	var u journal.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, avatar, pronoun FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Avatar, &u.Pronoun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]journal.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, avatar, pronoun FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []journal.User{}
	for rows.Next() {
		var u journal.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar, &u.Pronoun); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
