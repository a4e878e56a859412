// ABOUTME: HTTP route table for cafofo-gateway built on chi
// ABOUTME: Health endpoints are public; the API group is wrapped in CORS and optional JWT auth

package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/2389/cafofo/internal/auth"
	"github.com/2389/cafofo/internal/client"
)

// routes builds the gateway router.
func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(g.requestLogger)

	origins := g.config.Server.AllowedOrigins
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", client.IdempotencyHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health endpoints - no auth required
	r.Get("/health", g.handleHealth)
	r.Get("/health/ready", g.handleReady)

	r.Group(func(r chi.Router) {
		if g.verifier != nil {
			r.Use(auth.HTTPAuthMiddleware(g.store, g.verifier))
		}

		r.Get("/users", g.handleListUsers)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", g.handleGetEntries)
			r.Post("/", g.handleCreateEntry)
			r.Put("/{id}", g.handleUpdateEntry)
			r.Delete("/{id}", g.handleDeleteEntry)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", g.handleListNotifications)
			r.Post("/", g.handleSendNotification)
			r.Get("/stream", g.handleNotificationStream)
		})
	})

	return r
}

// requestLogger logs each request at debug level.
func (g *Gateway) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		g.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
