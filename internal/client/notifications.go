// ABOUTME: Notification endpoints of the gateway API client
// ABOUTME: Posts notifications, reads history and follows the SSE stream

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// IdempotencyHeader carries a caller-chosen key that makes retries of the
// same notification post deliver once.
const IdempotencyHeader = "Idempotency-Key"

// Notification is the wire form of a notification.
type Notification struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	SenderID  string    `json:"senderId,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// SendResult is the gateway's answer to a notification post.
type SendResult struct {
	ID        string `json:"id"`
	Delivered int    `json:"delivered"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// SendNotification posts n. idempotencyKey may be empty.
func (c *Client) SendNotification(ctx context.Context, n Notification, idempotencyKey string) (*SendResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/notifications", nil, n)
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}
	var out SendResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotifications returns userID's most recent notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	q := url.Values{"userId": {userID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/notifications", q, nil)
	if err != nil {
		return nil, err
	}
	var out []Notification
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StreamNotifications follows userID's notification stream, calling fn for
// each notification until ctx is done or the gateway closes the stream.
// Returns nil when ctx is canceled.
func (c *Client) StreamNotifications(ctx context.Context, userID string, fn func(Notification)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/notifications/stream", url.Values{"userId": {userID}}, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	err = readSSE(resp, func(event, data string) {
		if event != "notification" {
			return
		}
		var n Notification
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			c.logger.Warn("skipping malformed notification", "error", err)
			return
		}
		fn(n)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readSSE parses a text/event-stream body, calling fn once per event.
func readSSE(resp *http.Response, fn func(event, data string)) error {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	var (
		event string
		data  []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				if event == "" {
					event = "message"
				}
				fn(event, strings.Join(data, "\n"))
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reading stream: %w", err)
	}
	return nil
}
