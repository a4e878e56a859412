// Package store provides persistent storage for the cafofo gateway using SQLite.
//
// # Architecture
//
// The store package exposes narrow interfaces that consumers embed:
//
//   - EntryStore: journal entries keyed by (user_id, date)
//   - UserStore: the journal audience
//   - NotificationStore: history of fanned-out notifications
//
// Store combines them with Ping and Close. SQLiteStore implements Store in
// a single struct; MockStore is an in-memory equivalent for tests.
//
// # Drivers
//
// Open accepts either database/sql driver name:
//
//   - "sqlite": modernc.org/sqlite, pure Go (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// # Invariants
//
// A UNIQUE index on entries(user_id, date) guarantees at most one entry per
// user per day; CreateEntry maps the constraint failure to ErrDuplicateEntry.
//
// Every entry carries a version starting at 1. UpdateEntry increments it and,
// when the caller sends a non-zero version, rejects the write with
// ErrVersionConflict unless it matches the stored one. Callers that send
// version 0 get last-write-wins.
//
// # Timestamps
//
// Times are stored as fixed-width RFC3339 strings in UTC so they sort
// lexically.
package store
