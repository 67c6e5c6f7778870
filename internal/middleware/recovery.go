// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"efoodadmin/internal/render"
)

// Recoverer turns a handler panic into a logged 500 JSON error.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
					"request_id", RequestIDFromCtx(r.Context()),
				)
				render.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
