// Package gateway serves the shared journal over HTTP.
//
// # HTTP API
//
//   - GET /entries?userId=ID - calendar summaries, ordered by date
//   - GET /entries?userId=ID&date=YYYY-MM-DD - [] or [entry]
//   - POST /entries - create; 409 with code "duplicate" if the day is taken
//   - PUT /entries/{id} - update; 409 with code "version_conflict" on a stale version
//   - DELETE /entries/{id} - {"success": true, "id": ...}
//   - GET /users - the journal audience, seeded from config
//   - POST /notifications - store and fan out; honours Idempotency-Key
//   - GET /notifications?userId=ID&limit=N - history, newest first
//   - GET /notifications/stream?userId=ID - SSE stream
//   - GET /health, GET /health/ready
//
// When auth.jwt_secret is set every route except the health checks needs
// "Authorization: Bearer <jwt>" whose subject is a known user. The SSE
// stream also accepts ?access_token= for EventSource clients.
//
// # SSE Streaming
//
//	event: ready
//	data: {"userId": "ana", "subscription": "..."}
//
//	event: notification
//	data: {"id": "...", "userId": "ana", "kind": "commented", "body": "..."}
//
// Idle streams receive ": ping" comments every notifications.heartbeat_interval.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx) // blocks; graceful shutdown when ctx is canceled
package gateway
