// ABOUTME: Tests for the journal data model
// ABOUTME: Covers date parsing/JSON, field diffing, draft edits and error wrapping

package journal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 15}, d)
	assert.Equal(t, "2024-01-15", d.String())

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	d := MustParseDate("2024-02-29")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	// Timestamps from older clients are truncated to the day
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29T00:00:00.000Z"`), &back))
	assert.Equal(t, d, back)

	require.NoError(t, json.Unmarshal([]byte(`null`), &back))
	assert.True(t, back.IsZero())
}

func TestDate_AddDays(t *testing.T) {
	d := MustParseDate("2024-12-31")
	assert.Equal(t, "2025-01-01", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
}

func TestDiff(t *testing.T) {
	base := Fields{Title: "Dia bom", Content: "<p>oi</p>"}

	tests := []struct {
		name    string
		mutate  func(f *Fields)
		comment bool
		other   bool
	}{
		{"no change", func(f *Fields) {}, false, false},
		{"comment only", func(f *Fields) { f.Comment = "olha isso" }, true, false},
		{"title", func(f *Fields) { f.Title = "Dia ruim" }, false, true},
		{"content", func(f *Fields) { f.Content = "<p>tchau</p>" }, false, true},
		{"protection", func(f *Fields) { f.IsPasswordProtected = true }, false, true},
		{"password", func(f *Fields) { f.Password = "1234" }, false, true},
		{"whitespace is a change", func(f *Fields) { f.Title = "Dia bom " }, false, true},
		{"comment and title", func(f *Fields) { f.Comment = "x"; f.Title = "y" }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := base
			tt.mutate(&after)
			c := Diff(base, after)
			assert.Equal(t, tt.comment, c.Comment)
			assert.Equal(t, tt.other, c.Other)
			assert.Equal(t, !tt.comment && !tt.other, c.None())
		})
	}
}

func TestEntry_Unlocks(t *testing.T) {
	e := &Entry{IsPasswordProtected: true, Password: "Abc"}
	assert.True(t, e.Unlocks("Abc"))
	assert.False(t, e.Unlocks("abc"))
	assert.False(t, e.Unlocks("Abc "))

	e.IsPasswordProtected = false
	assert.True(t, e.Unlocks("anything"))
}

func TestDraft_SetAndEntry(t *testing.T) {
	d := NewDraft("A", MustParseDate("2024-01-15"))
	assert.True(t, d.IsNew())
	assert.Equal(t, PlaceholderContent, d.Content)

	require.NoError(t, d.Set(FieldTitle, "Dia bom"))
	require.NoError(t, d.Set(FieldProtected, "true"))
	require.NoError(t, d.Set(FieldPassword, "1234"))
	assert.Error(t, d.Set(FieldProtected, "maybe"))
	assert.Error(t, d.Set(Field("mood"), "x"))

	e := d.Entry()
	assert.Equal(t, "A", e.UserID)
	assert.Equal(t, "Dia bom", e.Title)
	assert.True(t, e.IsPasswordProtected)
	assert.Equal(t, "1234", e.Password)

	e.ID = "e1"
	e.Version = 3
	back := DraftFrom(e)
	assert.False(t, back.IsNew())
	assert.Equal(t, int64(3), back.Version)
	assert.Equal(t, e.Fields(), back.Fields())
}

func TestParseField(t *testing.T) {
	f, err := ParseField("protected")
	require.NoError(t, err)
	assert.Equal(t, FieldProtected, f)

	_, err = ParseField("avatar")
	assert.Error(t, err)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&PersistenceError{Op: "update", Err: cause})

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "update entry")

	wrapped := &PersistenceError{Op: "update", Err: ErrConflict}
	assert.True(t, errors.Is(wrapped, ErrConflict))
}
