// ABOUTME: Journal entry persistence for SQLiteStore
// ABOUTME: Enforces one entry per (user_id, date) and optimistic versioning

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/cafofo/internal/journal"
)

const entryColumns = `id, user_id, date, title, content, comment, is_password_protected, password, version, created_at, updated_at`

// CreateEntry stores a new entry. ID, Version and timestamps are assigned here.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *journal.Entry) error {
	now := time.Now().UTC()
	entry.ID = uuid.New().String()
	entry.Version = 1
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Date.String(),
		entry.Title,
		entry.Content,
		entry.Comment,
		boolToInt(entry.IsPasswordProtected),
		entry.Password,
		entry.Version,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("inserting entry: %w", err)
	}

	s.logger.Debug("created entry", "entry_id", entry.ID, "user_id", entry.UserID, "date", entry.Date.String())
	return nil
}

// GetEntry retrieves an entry by ID
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*journal.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	return scanEntry(row)
}

// GetEntryByDate retrieves the entry for a user on a given day
func (s *SQLiteStore) GetEntryByDate(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = ? AND date = ?`,
		userID, date.String(),
	)
	return scanEntry(row)
}

// ListEntries returns calendar summaries for a user, oldest first
func (s *SQLiteStore) ListEntries(ctx context.Context, userID string) ([]journal.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, is_password_protected
		FROM entries
		WHERE user_id = ?
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	summaries := []journal.Summary{}
	for rows.Next() {
		var (
			sum       journal.Summary
			dateStr   string
			protected int
		)
		if err := rows.Scan(&sum.ID, &dateStr, &protected); err != nil {
			return nil, fmt.Errorf("scanning entry summary: %w", err)
		}
		sum.Date, err = journal.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", sum.ID, err)
		}
		sum.IsPasswordProtected = protected != 0
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// UpdateEntry replaces the editable fields of an entry and bumps its version.
// User and date are fixed at creation. A non-zero entry.Version must match.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *journal.Entry) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET title = ?, content = ?, comment = ?, is_password_protected = ?, password = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND (? = 0 OR version = ?)
	`,
		entry.Title,
		entry.Content,
		entry.Comment,
		boolToInt(entry.IsPasswordProtected),
		entry.Password,
		formatTime(now),
		entry.ID,
		entry.Version, entry.Version,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetEntry(ctx, entry.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}

	updated, err := s.GetEntry(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("reloading entry: %w", err)
	}
	*entry = *updated
	return nil
}

// DeleteEntry removes an entry by ID
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// scanEntry scans a single entry row
func scanEntry(row *sql.Row) (*journal.Entry, error) {
	var (
		e                    journal.Entry
		dateStr              string
		protected            int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &dateStr, &e.Title, &e.Content, &e.Comment,
		&protected, &e.Password, &e.Version, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	e.Date, err = journal.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.IsPasswordProtected = protected != 0
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}
