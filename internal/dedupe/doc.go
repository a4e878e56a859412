// Package dedupe provides a TTL cache of idempotency keys so a retried
// notification post is delivered once.
package dedupe
