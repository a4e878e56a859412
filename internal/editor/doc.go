// Package editor implements the draft/editor session for one acting user.
//
// # Lifecycle
//
//	s := editor.New(sess, store, dispatcher)
//	draft, err := s.Open(ctx, userID, date)   // ErrLocked if protected
//	err = s.Verify(password)                  // unlocks a protected entry
//	err = s.Edit(journal.FieldTitle, "Dia bom")
//	entry, err := s.Save(ctx)
//
// # Saving
//
// A draft without an ID is created and a "created" notification goes to
// every audience member except the owner. A draft with an ID is compared
// against the last persisted snapshot across every editable field:
//
//   - nothing changed: no store call, no notification
//   - comment changed: update, then "commented" to the entry owner
//   - anything else changed: update, then "edited" to everyone but the owner
//
// On success the draft and snapshot are replaced by the stored entry. On
// failure both are left exactly as they were and the error is a
// *journal.PersistenceError. Only one save runs at a time; a second call
// while one is in flight returns ErrSaveInProgress.
//
// Updates carry the version the draft was opened from, so a draft never
// overwrites a newer entry; the store answers journal.ErrConflict instead.
//
// # Staleness
//
// Opening another date supersedes the previous selection. Results that
// arrive for a superseded selection are not applied and surface as
// journal.ErrStaleResponse, which callers drop silently. Notifications for
// a save that did reach the store are still sent.
package editor
