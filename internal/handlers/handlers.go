// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API consumed by the eFood admin
// dashboard. Handler groups proxy the upstream eFood API with the session's
// token and keep the dashboard's own state (expand state, audit trail).
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"efoodadmin/internal/catalog"
	"efoodadmin/internal/efood"
	"efoodadmin/internal/render"
	"efoodadmin/internal/session"
	"efoodadmin/internal/store"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// timeNow is replaced in tests.
var timeNow = time.Now

// SessionStore is the part of session.Store the handlers use.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// CatalogCache caches raw upstream payloads (cache.Catalog).
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	InvalidateAll(ctx context.Context)
}

// ExpandStates persists per-user expand state (store.ExpandStateStore).
type ExpandStates interface {
	Load(ctx context.Context, userID int64) (*catalog.ExpandState, error)
	Set(ctx context.Context, userID int64, categoryID int, expanded bool) error
	Forget(ctx context.Context, userID int64, categoryIDs []int) error
	ForgetCategory(ctx context.Context, categoryID int) error
}

// AuditLog records category mutations (store.AuditLogStore).
type AuditLog interface {
	Log(ctx context.Context, userID int64, categoryID int, action, detail string)
	Recent(ctx context.Context, limit int) ([]store.AuditEntry, error)
}

// CoverStorage stores category cover images (storage.Client).
type CoverStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// upstreamFailed reports an upstream error. A 401 means the session's API
// token was revoked, so the session is ended as well.
func upstreamFailed(w http.ResponseWriter, r *http.Request, sessions SessionStore, err error) {
	if efood.IsUnauthorized(err) {
		if sessions != nil {
			sessions.Destroy(r.Context(), w, r)
		}
		render.Error(w, http.StatusUnauthorized, "Your session has expired. Please sign in again.")
		return
	}
	render.Upstream(w, err)
}

// Pagination defaults for roster listings.
const (
	defaultPerPage = 25
	maxPerPage     = 100
)

// pageParams reads page and per_page from the query string.
func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// pageResponse is the envelope of every paginated listing.
type pageResponse struct {
	Data    []efood.Record `json:"data"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}

// paginate slices records for the requested page. A page past the end
// yields an empty data slice.
func paginate(records []efood.Record, page, perPage int) pageResponse {
	total := len(records)
	pages := (total + perPage - 1) / perPage

	// Compare page numbers, not offsets: (page-1)*perPage can overflow.
	start := total
	if page-1 < pages {
		start = (page - 1) * perPage
	}
	end := min(start+perPage, total)

	return pageResponse{
		Data:    append([]efood.Record{}, records[start:end]...),
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}
}

// filterRecords keeps records where any string field contains term,
// case-insensitively. An empty term keeps everything.
func filterRecords(records []efood.Record, term string) []efood.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]efood.Record, 0, len(records))
	for _, rec := range records {
		for _, v := range rec {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
