// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON responses for the dashboard API, including the
// mapping of upstream eFood failures onto HTTP status codes.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"efoodadmin/internal/efood"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("json encode failed", "error", err)
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Upstream maps an error from the eFood client onto a response. Client
// errors from the API (4xx) keep their status and message; anything else
// becomes 502 Bad Gateway and is logged.
func Upstream(w http.ResponseWriter, err error) {
	var apiErr *efood.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		msg := apiErr.Message()
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		Error(w, apiErr.Status, msg)
		return
	}

	slog.Error("upstream request failed", "error", err)
	Error(w, http.StatusBadGateway, "The eFood API is unavailable. Please try again.")
}
