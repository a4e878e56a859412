// ABOUTME: Entry store endpoints of the gateway API client
// ABOUTME: List, resolve by date, create, update and delete journal entries

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/2389/cafofo/internal/journal"
)

// entryRequest is the POST/PUT body.
type entryRequest struct {
	ID                  string       `json:"id,omitempty"`
	UserID              string       `json:"userId"`
	Date                journal.Date `json:"date"`
	Title               string       `json:"title"`
	Content             string       `json:"content"`
	Comment             string       `json:"comment"`
	IsPasswordProtected bool         `json:"isPasswordProtected"`
	Password            string       `json:"password"`
	Version             int64        `json:"version,omitempty"`
}

func toRequest(e *journal.Entry) entryRequest {
	return entryRequest{
		ID:                  e.ID,
		UserID:              e.UserID,
		Date:                e.Date,
		Title:               e.Title,
		Content:             e.Content,
		Comment:             e.Comment,
		IsPasswordProtected: e.IsPasswordProtected,
		Password:            e.Password,
		Version:             e.Version,
	}
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ListEntries returns the calendar summaries of userID's entries.
func (c *Client) ListEntries(ctx context.Context, userID string) ([]journal.Summary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/entries", url.Values{"userId": {userID}}, nil)
	if err != nil {
		return nil, err
	}
	var out []journal.Summary
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntryByDate returns the entry for (userID, date) or journal.ErrNotFound.
func (c *Client) GetEntryByDate(ctx context.Context, userID string, date journal.Date) (*journal.Entry, error) {
	q := url.Values{"userId": {userID}, "date": {date.String()}}
	req, err := c.newRequest(ctx, http.MethodGet, "/entries", q, nil)
	if err != nil {
		return nil, err
	}
	var out []journal.Entry
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, journal.ErrNotFound
	}
	return &out[0], nil
}

// CreateEntry persists a new entry and returns it with its assigned ID.
func (c *Client) CreateEntry(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	body := toRequest(entry)
	body.ID = ""
	body.Version = 0
	req, err := c.newRequest(ctx, http.MethodPost, "/entries", nil, body)
	if err != nil {
		return nil, err
	}
	var out journal.Entry
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEntry replaces an existing entry. A non-zero Version is checked by
// the gateway.
func (c *Client) UpdateEntry(ctx context.Context, entry *journal.Entry) (*journal.Entry, error) {
	if entry.ID == "" {
		return nil, errors.New("entry id is required for update")
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/entries/"+url.PathEscape(entry.ID), nil, toRequest(entry))
	if err != nil {
		return nil, err
	}
	var out journal.Entry
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEntry removes an entry and returns the acknowledged ID.
func (c *Client) DeleteEntry(ctx context.Context, id string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/entries/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return "", err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListUsers returns the journal audience.
func (c *Client) ListUsers(ctx context.Context) ([]journal.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []journal.User
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
