// Package auth provides authentication for the cafofo gateway.
//
// # Tokens
//
// Clients authenticate with HS256 JWTs signed with the configured
// auth.jwt_secret. The "sub" claim is the journal user ID; tokens are minted
// with `cafofo-gateway token --user ID`.
//
// # HTTP Middleware
//
// HTTPAuthMiddleware reads "Authorization: Bearer <token>" (or the
// access_token query parameter for SSE streams), verifies it, looks the user
// up and attaches an AuthContext:
//
//	authCtx := auth.FromContext(r.Context())
//	if !authCtx.CanActFor(entry.UserID) { ... }
//
// When no jwt_secret is configured the gateway skips the middleware and
// handlers see a nil AuthContext.
package auth
