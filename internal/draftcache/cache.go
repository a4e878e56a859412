// ABOUTME: diskv-backed cache of unsaved drafts keyed by owner and date
// ABOUTME: Owner IDs are base64-encoded into directory names

package draftcache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"github.com/2389/cafofo/internal/journal"
)

// ErrNotFound means no draft is cached for the key.
var ErrNotFound = errors.New("draft not cached")

// Cache stores drafts on disk.
type Cache struct {
	d        *diskv.Diskv
	basePath string
	now      func() time.Time
}

// record is the on-disk form of a draft.
type record struct {
	ID                  string       `json:"id,omitempty"`
	Version             int64        `json:"version,omitempty"`
	UserID              string       `json:"userId"`
	Date                journal.Date `json:"date"`
	Title               string       `json:"title"`
	Content             string       `json:"content"`
	Comment             string       `json:"comment"`
	IsPasswordProtected bool         `json:"isPasswordProtected"`
	Password            string       `json:"password,omitempty"`
	SavedAt             time.Time    `json:"savedAt"`
}

// Entry is a cached draft with the time it was written.
type Entry struct {
	Draft   journal.Draft
	SavedAt time.Time
}

// Open returns a cache rooted at basePath.
func Open(basePath string) (*Cache, error) {
	if basePath == "" {
		return nil, errors.New("draftcache: base path required")
	}
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      256 * 1024,
		}),
		basePath: basePath,
		now:      time.Now,
	}, nil
}

// BasePath returns the cache directory.
func (c *Cache) BasePath() string {
	return c.basePath
}

// Put writes d, replacing any cached draft for the same owner and date.
func (c *Cache) Put(d journal.Draft) error {
	if d.UserID == "" || d.Date.IsZero() {
		return errors.New("draftcache: draft needs an owner and a date")
	}
	data, err := json.Marshal(record{
		ID:                  d.ID,
		Version:             d.Version,
		UserID:              d.UserID,
		Date:                d.Date,
		Title:               d.Title,
		Content:             d.Content,
		Comment:             d.Comment,
		IsPasswordProtected: d.IsPasswordProtected,
		Password:            d.Password,
		SavedAt:             c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("draftcache: encoding draft: %w", err)
	}
	if err := c.d.Write(toKey(d.UserID, d.Date), data); err != nil {
		return fmt.Errorf("draftcache: writing draft: %w", err)
	}
	return nil
}

// Get returns the cached draft for (userID, date).
func (c *Cache) Get(userID string, date journal.Date) (Entry, error) {
	return c.read(toKey(userID, date))
}

// Delete forgets the draft for (userID, date). Deleting a missing draft is not an error.
func (c *Cache) Delete(userID string, date journal.Date) error {
	err := c.d.Erase(toKey(userID, date))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("draftcache: erasing draft: %w", err)
	}
	return nil
}

// List returns every cached draft ordered by owner then date.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	for key := range c.d.Keys(ctx.Done()) {
		e, err := c.read(key)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Draft, out[j].Draft
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Date.Before(b.Date)
	})
	return out, nil
}

func (c *Cache) read(key string) (Entry, error) {
	data, err := c.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("draftcache: reading %s: %w", key, err)
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Entry{}, fmt.Errorf("draftcache: decoding %s: %w", key, err)
	}
	return Entry{
		Draft: journal.Draft{
			ID:                  r.ID,
			Version:             r.Version,
			UserID:              r.UserID,
			Date:                r.Date,
			Title:               r.Title,
			Content:             r.Content,
			Comment:             r.Comment,
			IsPasswordProtected: r.IsPasswordProtected,
			Password:            r.Password,
		},
		SavedAt: r.SavedAt,
	}, nil
}

// toKey makes `owner-date` with the owner base64url-encoded, since user
// IDs may contain dashes.
func toKey(userID string, date journal.Date) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID)) + "-" + date.String()
}

func keyToPath(key string) *diskv.PathKey {
	owner, date, _ := strings.Cut(key, "-")
	return &diskv.PathKey{Path: []string{owner}, FileName: date}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.Join(pk.Path, "-") + "-" + pk.FileName
}
