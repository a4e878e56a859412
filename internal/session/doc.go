// Package session holds the identity of the acting user for one editor
// session.
//
// A Context is created once at session start, from an explicit user ID and
// the audience returned by the user directory, and is torn down with Close
// on logout. Operations that need identity receive the Context directly or
// via WithContext/FromContext instead of reading ambient client state.
//
// # Notification targets
//
// The journal was built for two users. OtherUser keeps that resolution:
// it returns the single audience member who is not the current user and
// reports false when there is no such user or more than one. Others is the
// general form used for fan-out: every audience member except the entry
// owner. With exactly two users both agree.
package session
