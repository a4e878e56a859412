// Package client is a typed HTTP client for the cafofo gateway API.
//
// # Overview
//
// The client carries no business logic. It maps each endpoint to a method
// and each error response to *APIError, which unwraps to the journal
// sentinels so callers can use errors.Is:
//
//   - 404 -> journal.ErrNotFound
//   - 409 with code "duplicate" -> journal.ErrDuplicate
//   - 409 with code "conflict" -> journal.ErrConflict
//
// # Endpoints
//
//	GET    /entries?userId=             ListEntries
//	GET    /entries?userId=&date=       GetEntryByDate (empty array -> ErrNotFound)
//	POST   /entries                     CreateEntry
//	PUT    /entries/{id}                UpdateEntry
//	DELETE /entries/{id}                DeleteEntry
//	GET    /users                       ListUsers
//	POST   /notifications               SendNotification
//	GET    /notifications?userId=       ListNotifications
//	GET    /notifications/stream        StreamNotifications (SSE)
//	GET    /health                      Health
//
// # Authentication
//
// WithToken adds "Authorization: Bearer <token>" to every request.
package client
