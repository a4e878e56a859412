// ABOUTME: Persisted journal entry, user, and calendar summary types
// ABOUTME: Fields/Diff capture the user-editable subset compared on save

package journal

import "time"

// PlaceholderContent is the content of a blank draft. Content is an opaque
// serialized document and is never inspected beyond equality.
const PlaceholderContent = "<p></p>"

// Pronoun values used when composing Portuguese notification text.
const (
	PronounFeminine  = "a"
	PronounMasculine = "o"
)

// User is a member of the journal audience. Read-only to the editor.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	Pronoun string `json:"pronoun,omitempty"`
}

// Entry is the persisted per-(user, date) journal record.
type Entry struct {
	ID                  string    `json:"id,omitempty"`
	UserID              string    `json:"userId"`
	Date                Date      `json:"date"`
	Title               string    `json:"title"`
	Content             string    `json:"content"`
	Comment             string    `json:"comment"`
	IsPasswordProtected bool      `json:"isPasswordProtected"`
	Password            string    `json:"password"`
	Version             int64     `json:"version,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt,omitempty"`
}

// Summary is the calendar projection of an Entry.
type Summary struct {
	ID                  string `json:"id"`
	Date                Date   `json:"date"`
	IsPasswordProtected bool   `json:"isPasswordProtected"`
}

// Summary returns the calendar projection of e.
func (e *Entry) Summary() Summary {
	return Summary{ID: e.ID, Date: e.Date, IsPasswordProtected: e.IsPasswordProtected}
}

// Unlocks reports whether password opens e. Unprotected entries are always
// open; protected ones require an exact, case-sensitive match.
//
// The stored password is plaintext and compared literally.
// TODO: hash stored passwords once existing entries can be migrated.
func (e *Entry) Unlocks(password string) bool {
	if !e.IsPasswordProtected {
		return true
	}
	return password == e.Password
}

// Fields returns the user-editable persisted fields of e.
func (e *Entry) Fields() Fields {
	return Fields{
		Title:               e.Title,
		Content:             e.Content,
		Comment:             e.Comment,
		IsPasswordProtected: e.IsPasswordProtected,
		Password:            e.Password,
	}
}

// Clone returns a copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Fields is the set of persisted fields a save may change.
type Fields struct {
	Title               string
	Content             string
	Comment             string
	IsPasswordProtected bool
	Password            string
}

// Change describes what differs between two Fields values.
type Change struct {
	Comment bool // comment differs
	Other   bool // any of title, content, protection, password differs
}

// None reports whether nothing changed.
func (c Change) None() bool {
	return !c.Comment && !c.Other
}

// Diff compares every field of before and after exactly, without trimming
// or normalization.
func Diff(before, after Fields) Change {
	return Change{
		Comment: before.Comment != after.Comment,
		Other: before.Title != after.Title ||
			before.Content != after.Content ||
			before.IsPasswordProtected != after.IsPasswordProtected ||
			before.Password != after.Password,
	}
}
