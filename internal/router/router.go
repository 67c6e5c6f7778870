// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// eFood admin API. It organizes routes into public, authenticated and
// admin-only groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"efoodadmin/internal/handlers"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/session"
)

// Login attempts allowed per client IP per window.
const (
	loginLimit  = 10
	loginWindow = time.Minute
)

// Options carries the settings that vary between environments.
type Options struct {
	CORSOrigins   []string
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, categories *handlers.Categories, rosters *handlers.Rosters, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(corsHandler(opts.CORSOrigins).Handler)
	r.Use(middleware.NewCSRF(opts.SecureCookies))
	r.Use(middleware.LoadSession(sessionStore))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	loginLimiter := middleware.NewRateLimiter(loginLimit, loginWindow)

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints, accessible without a verified session.
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.With(loginLimiter.Middleware).Post("/otp", auth.VerifyOTP)
			})
		})

		// Signed-in and OTP-verified dashboard users (admins and vendors).
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireVerified)

			r.Get("/dashboard", rosters.Dashboard)
			r.Get("/items", rosters.Items)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categories.List)
				r.Get("/export", categories.Export)
				r.Post("/{id}/toggle", categories.Toggle)

				// Mutations, admin only.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/audit", categories.Audit)
					r.Post("/", categories.Create)
					r.Put("/{id}", categories.Update)
					r.Delete("/{id}", categories.Delete)
					r.Post("/{id}/cover", categories.Cover)
				})
			})

			// Rosters, admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/vendors", rosters.Vendors)
				r.Get("/drivers", rosters.Drivers)
				r.Get("/orders", rosters.Orders)
			})
		})
	})

	return r
}

// corsHandler allows the dashboard SPA origins to call the API with
// credentials and the CSRF header.
func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.CSRFHeaderName, "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
