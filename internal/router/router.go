// Package router sets up all HTTP routes and middleware chains for the
// blockcms API. Routes are organized into public and authenticated
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blockcms/internal/handlers"
	"blockcms/internal/middleware"
	"blockcms/internal/session"
	"blockcms/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, pages *handlers.Pages, sessions *handlers.Sessions, users *handlers.Users, settings *handlers.Settings, assets *handlers.Assets) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Login attempts are rate limited per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Session lifecycle.
		r.With(loginLimiter.Middleware).Post("/sessions", sessions.Login)
		r.Get("/sessions/current", sessions.Current)
		r.Delete("/sessions/current", sessions.Logout)

		// Pages.
		r.Route("/pages", func(r chi.Router) {
			// Public read path: published pages by slug or as a list.
			r.Get("/filters", pages.Filters)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/", pages.List)
				r.Post("/", pages.Create)
				r.Get("/{id}", pages.Get)
				r.Put("/{id}", pages.Update)
				r.Delete("/{id}", pages.Delete)
			})
		})

		// Settings: public reads, admin writes.
		r.Get("/settings/{key}", settings.Get)
		r.With(middleware.RequireAuth, middleware.RequireAdmin).
			Put("/settings/{key}", settings.Set)

		// Users.
		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireAuth, middleware.RequireAdmin).Get("/", users.List)

			// TOTP enrollment for the current user.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/current/totp", users.BeginTOTP)
				r.Post("/current/totp/verify", users.VerifyTOTP)
			})
		})

		// Embedded image assets available to image blocks.
		r.With(middleware.RequireAuth).Get("/static", assets.List)
	})

	// The embedded files themselves.
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
