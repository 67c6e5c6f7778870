// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"efoodadmin/internal/catalog"
	"efoodadmin/internal/imaging"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/render"
	"efoodadmin/internal/storage"
	"efoodadmin/internal/store"
)

// maxCoverSize is the largest cover upload accepted (10 MB).
const maxCoverSize = 10 << 20

// Cover uploads a new cover image for a category, points the category at
// it upstream and removes the previous cover from storage.
func (h *Categories) Cover(w http.ResponseWriter, r *http.Request) {
	if h.covers == nil {
		render.Error(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	id, ok := idParam(r)
	if !ok {
		render.Error(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	// Limit request body to maxCoverSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize+1024)
	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		render.Error(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Error(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > maxCoverSize {
		render.Error(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	cover, err := imaging.ProcessCover(raw, imaging.DefaultCoverWidth)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedType) {
			render.Error(w, http.StatusUnsupportedMediaType, "Cover must be a JPEG, PNG, GIF or WebP image.")
			return
		}
		slog.Warn("cover processing failed", "category_id", id, "error", err)
		render.Error(w, http.StatusUnprocessableEntity, "The image could not be processed.")
		return
	}

	tree, err := h.src.tree(r.Context(), sess, true)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	current, ok := tree.Category(id)
	if !ok {
		render.Error(w, http.StatusNotFound, "Category not found.")
		return
	}

	key := storage.CoverKey(id, current.CategoryName, cover.Ext(), timeNow())
	if err := h.covers.Upload(r.Context(), key, cover.ContentType, bytes.NewReader(cover.Data), int64(len(cover.Data))); err != nil {
		slog.Error("cover upload failed", "category_id", id, "key", key, "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}
	url := h.covers.FileURL(key)

	in := inputFrom(current)
	in.CoverImage = url
	rec, err := h.src.api.UpdateCategory(r.Context(), sess.APIToken, id, in)
	if err != nil {
		// The category still points at the old cover.
		if delErr := h.covers.Delete(r.Context(), key); delErr != nil {
			slog.Warn("orphaned cover cleanup failed", "key", key, "error", delErr)
		}
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	h.src.invalidate(r.Context())

	if oldKey, ok := h.covers.ExtractKey(current.CoverImage); ok {
		if err := h.covers.Delete(r.Context(), oldKey); err != nil {
			slog.Warn("old cover delete failed", "key", oldKey, "error", err)
		}
	}

	updated := catalog.NormalizeRecord(rec)
	if updated.ID == 0 {
		updated = *current
		updated.CoverImage = url
	}
	h.audit.Log(r.Context(), sess.UserID, id, store.ActionCover, url)
	slog.Info("category cover replaced", "category_id", id, "key", key, "bytes", len(cover.Data))

	render.JSON(w, http.StatusOK, updated)
}
