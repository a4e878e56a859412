// ABOUTME: Editor-local draft of a journal entry
// ABOUTME: Field-level edits happen here and never touch the store

package journal

import (
	"fmt"
	"strconv"
)

// Field names a user-editable part of a Draft.
type Field string

const (
	FieldTitle     Field = "title"
	FieldContent   Field = "content"
	FieldComment   Field = "comment"
	FieldPassword  Field = "password"
	FieldProtected Field = "isPasswordProtected"
)

// ParseField maps a field name to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldTitle, FieldContent, FieldComment, FieldPassword, FieldProtected:
		return f, nil
	case "protected":
		return FieldProtected, nil
	default:
		return "", fmt.Errorf("unknown field %q", s)
	}
}

// Draft is an unsaved candidate entry owned by a single editor session.
// ID and Version are those of the persisted entry it was opened from and
// are empty for a new entry.
type Draft struct {
	ID                  string
	Version             int64
	UserID              string
	Date                Date
	Title               string
	Content             string
	Comment             string
	IsPasswordProtected bool
	Password            string
}

// NewDraft returns a blank draft with placeholder content.
func NewDraft(userID string, date Date) Draft {
	return Draft{
		UserID:  userID,
		Date:    date,
		Content: PlaceholderContent,
	}
}

// DraftFrom copies e, including its identity, into a Draft.
func DraftFrom(e *Entry) Draft {
	return Draft{
		ID:                  e.ID,
		Version:             e.Version,
		UserID:              e.UserID,
		Date:                e.Date,
		Title:               e.Title,
		Content:             e.Content,
		Comment:             e.Comment,
		IsPasswordProtected: e.IsPasswordProtected,
		Password:            e.Password,
	}
}

// IsNew reports whether the draft has never been persisted.
func (d Draft) IsNew() bool {
	return d.ID == ""
}

// Fields returns the persisted-field projection of d.
func (d Draft) Fields() Fields {
	return Fields{
		Title:               d.Title,
		Content:             d.Content,
		Comment:             d.Comment,
		IsPasswordProtected: d.IsPasswordProtected,
		Password:            d.Password,
	}
}

// Entry builds the request body for persisting d.
func (d Draft) Entry() *Entry {
	return &Entry{
		ID:                  d.ID,
		Version:             d.Version,
		UserID:              d.UserID,
		Date:                d.Date,
		Title:               d.Title,
		Content:             d.Content,
		Comment:             d.Comment,
		IsPasswordProtected: d.IsPasswordProtected,
		Password:            d.Password,
	}
}

// Set assigns value to field. FieldProtected accepts anything
// strconv.ParseBool does.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldContent:
		d.Content = value
	case FieldComment:
		d.Comment = value
	case FieldPassword:
		d.Password = value
	case FieldProtected:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		d.IsPasswordProtected = b
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
