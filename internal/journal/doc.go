// Package journal defines the shared data model for the cafofo journal.
//
// # Overview
//
// Every user owns at most one Entry per calendar day. An Entry may be
// protected by a plaintext password, in which case readers must pass the
// password gate before the editor shows its contents.
//
// # Types
//
//   - Date: a calendar day without a time-of-day component
//   - User: a read-only member of the journal audience
//   - Entry: the persisted per-(user, date) record
//   - Summary: the slim projection used to decorate a calendar
//   - Draft: the editor-local, unsaved candidate for an Entry
//   - Fields: the set of persisted, user-editable fields used for diffing
//
// # Errors
//
// Callers classify failures with errors.Is against the sentinels in
// errors.go. Store and transport failures are wrapped in *PersistenceError
// so that errors.Is(err, ErrPersistence) holds for any of them.
package journal
