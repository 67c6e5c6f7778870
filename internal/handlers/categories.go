// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"efoodadmin/internal/catalog"
	"efoodadmin/internal/efood"
	"efoodadmin/internal/export"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/render"
	"efoodadmin/internal/store"
)

// Audit listing limits.
const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// Categories groups the category tree handlers.
type Categories struct {
	src      *source
	sessions SessionStore
	states   ExpandStates
	audit    AuditLog
	covers   CoverStorage // nil when object storage is not configured
	exporter *export.Catalog
}

// NewCategories creates a new Categories handler group. cache and covers
// may be nil.
func NewCategories(api *efood.Client, cache CatalogCache, sessions SessionStore, states ExpandStates,
	audit AuditLog, covers CoverStorage, exporter *export.Catalog) *Categories {
	if exporter == nil {
		exporter = export.NewCatalog(nil)
	}
	return &Categories{
		src:      &source{api: api, cache: cache},
		sessions: sessions,
		states:   states,
		audit:    audit,
		covers:   covers,
		exporter: exporter,
	}
}

// rowView is one rendered row of the category tree.
type rowView struct {
	ID          int               `json:"id"`
	Depth       int               `json:"depth"`
	HasChildren bool              `json:"hasChildren"`
	Expanded    bool              `json:"expanded"`
	Category    *catalog.Category `json:"category"`
}

// listResponse is the payload of GET /api/categories.
type listResponse struct {
	Rows     []rowView           `json:"rows"`
	Tree     []catalog.ViewNode  `json:"tree"`
	Total    int                 `json:"total"`
	Shown    int                 `json:"shown"`
	Expanded []int               `json:"expanded"`
	Orphans  []*catalog.Category `json:"orphans"`
}

func rowViews(t *catalog.Tree, rows []catalog.Row) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, r := range rows {
		c, _ := t.Category(r.ID)
		out = append(out, rowView{
			ID:          r.ID,
			Depth:       r.Depth,
			HasChildren: r.HasChildren,
			Expanded:    r.Expanded,
			Category:    c,
		})
	}
	return out
}

// List returns the filtered category forest. Query parameters: q (search
// term), type (all, parent or sub), reload=1 to bypass the cache and
// expand=all to list every row regardless of the saved expand state.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	q := r.URL.Query()

	tree, err := h.src.tree(r.Context(), sess, q.Get("reload") == "1")
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}

	state, err := h.states.Load(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("load expand state failed", "user_id", sess.UserID, "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to load expand state.")
		return
	}
	if dropped := state.Reconcile(tree); len(dropped) > 0 {
		if err := h.states.Forget(r.Context(), sess.UserID, dropped); err != nil {
			slog.Warn("forget expand state failed", "user_id", sess.UserID, "error", err)
		}
	}

	filtered := catalog.FilterTree(tree, q.Get("q"), catalog.ParseFilterType(q.Get("type")))

	var rows []catalog.Row
	if q.Get("expand") == "all" {
		rows = catalog.Flatten(filtered)
	} else {
		rows = catalog.Rows(filtered, state)
	}

	render.JSON(w, http.StatusOK, listResponse{
		Rows:     rowViews(filtered, rows),
		Tree:     filtered.View(),
		Total:    tree.Count(),
		Shown:    filtered.Count(),
		Expanded: state.IDs(),
		Orphans:  tree.Orphans(),
	})
}

// Toggle flips the expand state of one category for the current user.
func (h *Categories) Toggle(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, ok := idParam(r)
	if !ok {
		render.Error(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	tree, err := h.src.tree(r.Context(), sess, false)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	if !tree.Has(id) {
		render.Error(w, http.StatusNotFound, "Category not found.")
		return
	}

	state, err := h.states.Load(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("load expand state failed", "user_id", sess.UserID, "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to load expand state.")
		return
	}
	expanded := state.Toggle(id)
	if err := h.states.Set(r.Context(), sess.UserID, id, expanded); err != nil {
		slog.Error("save expand state failed", "user_id", sess.UserID, "category_id", id, "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to save expand state.")
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"id": id, "expanded": expanded})
}

// categoryRequest is the create/update body sent by the dashboard.
type categoryRequest struct {
	CategoryName      string `json:"categoryName"`
	ShortDescription  string `json:"shortDescription"`
	LongDescription   string `json:"longDescription"`
	IsSubCategory     bool   `json:"isSubCategory"`
	CoverImage        string `json:"coverImage"`
	ParentCategoryIDs []int  `json:"parentCategoryIds"`
}

// input validates req against tree and builds the upstream payload.
// id is 0 for a new category.
func (req *categoryRequest) input(tree *catalog.Tree, id int) (efood.CategoryInput, string) {
	if msg := validateCategory(req.CategoryName, req.ShortDescription, req.LongDescription); msg != "" {
		return efood.CategoryInput{}, msg
	}
	parents, err := catalog.ValidateParents(tree, id, req.IsSubCategory, req.ParentCategoryIDs)
	if err != nil {
		return efood.CategoryInput{}, parentError(err)
	}

	cover := strings.TrimSpace(req.CoverImage)
	if cover == catalog.PlaceholderCoverImage {
		cover = ""
	}
	return efood.CategoryInput{
		CategoryName:      strings.TrimSpace(req.CategoryName),
		ShortDescription:  req.ShortDescription,
		LongDescription:   req.LongDescription,
		IsSubCategory:     req.IsSubCategory,
		CoverImage:        cover,
		ParentCategoryIDs: parents,
	}, ""
}

// parentError turns a parent validation error into a user-facing message.
func parentError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrParentRequired):
		return "Choose at least one parent category for a sub-category."
	case errors.Is(err, catalog.ErrSelfParent):
		return "A category cannot be its own parent."
	case errors.Is(err, catalog.ErrUnknownParent):
		return "A selected parent category no longer exists. Reload and try again."
	case errors.Is(err, catalog.ErrParentCycle):
		return "A category cannot be placed under one of its own sub-categories."
	default:
		return err.Error()
	}
}

// inputFrom rebuilds the upstream payload of an existing category.
func inputFrom(c *catalog.Category) efood.CategoryInput {
	cover := c.CoverImage
	if cover == catalog.PlaceholderCoverImage {
		cover = ""
	}
	parents := c.ParentCategoryIDs
	if !c.IsSubCategory {
		parents = []int{}
	}
	return efood.CategoryInput{
		CategoryName:      c.CategoryName,
		ShortDescription:  c.ShortDescription,
		LongDescription:   c.LongDescription,
		IsSubCategory:     c.IsSubCategory,
		CoverImage:        cover,
		ParentCategoryIDs: parents,
	}
}

// Create adds a category upstream.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	// Validate against fresh data so new parents are visible.
	tree, err := h.src.tree(r.Context(), sess, true)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	in, msg := req.input(tree, 0)
	if msg != "" {
		render.Error(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rec, err := h.src.api.CreateCategory(r.Context(), sess.APIToken, in)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	h.src.invalidate(r.Context())

	created := catalog.NormalizeRecord(rec)
	h.audit.Log(r.Context(), sess.UserID, created.ID, store.ActionCreate, created.CategoryName)
	slog.Info("category created", "category_id", created.ID, "user_id", sess.UserID)

	render.JSON(w, http.StatusCreated, created)
}

// Update replaces a category upstream.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, ok := idParam(r)
	if !ok {
		render.Error(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	tree, err := h.src.tree(r.Context(), sess, true)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	if !tree.Has(id) {
		render.Error(w, http.StatusNotFound, "Category not found.")
		return
	}
	in, msg := req.input(tree, id)
	if msg != "" {
		render.Error(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rec, err := h.src.api.UpdateCategory(r.Context(), sess.APIToken, id, in)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	h.src.invalidate(r.Context())

	updated := catalog.NormalizeRecord(rec)
	if updated.ID == 0 {
		// Some deployments answer an update with an empty body.
		updated = catalog.Category{
			ID:                id,
			CategoryName:      in.CategoryName,
			ShortDescription:  in.ShortDescription,
			LongDescription:   in.LongDescription,
			IsSubCategory:     in.IsSubCategory,
			CoverImage:        req.CoverImage,
			ParentCategoryIDs: in.ParentCategoryIDs,
		}
		if updated.CoverImage == "" {
			updated.CoverImage = catalog.PlaceholderCoverImage
		}
	}
	h.audit.Log(r.Context(), sess.UserID, id, store.ActionUpdate, in.CategoryName)
	slog.Info("category updated", "category_id", id, "user_id", sess.UserID)

	render.JSON(w, http.StatusOK, updated)
}

// Delete removes a category upstream and forgets its expand state.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, ok := idParam(r)
	if !ok {
		render.Error(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	if err := h.src.api.DeleteCategory(r.Context(), sess.APIToken, id); err != nil {
		if efood.IsNotFound(err) {
			render.Error(w, http.StatusNotFound, "Category not found.")
			return
		}
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	h.src.invalidate(r.Context())

	if err := h.states.ForgetCategory(r.Context(), id); err != nil {
		slog.Warn("forget deleted category failed", "category_id", id, "error", err)
	}
	h.audit.Log(r.Context(), sess.UserID, id, store.ActionDelete, "")
	slog.Info("category deleted", "category_id", id, "user_id", sess.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// Export downloads the filtered forest as an XLSX workbook. It accepts
// the same q and type parameters as List.
func (h *Categories) Export(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	q := r.URL.Query()

	tree, err := h.src.tree(r.Context(), sess, false)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	filtered := catalog.FilterTree(tree, q.Get("q"), catalog.ParseFilterType(q.Get("type")))

	data, err := h.exporter.CategoriesXLSX(filtered)
	if err != nil {
		slog.Error("category export failed", "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to build the export.")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(timeNow())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Audit lists recent category mutations. ?limit= caps the count.
func (h *Categories) Audit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	entries, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("audit log query failed", "error", err)
		render.Error(w, http.StatusInternalServerError, "Failed to load the audit log.")
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"data": entries})
}
