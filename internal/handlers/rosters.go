// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"efoodadmin/internal/efood"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/render"
)

// Rosters groups the read-only listings: dashboard counts, menu items,
// vendors, drivers and orders.
type Rosters struct {
	src      *source
	sessions SessionStore
}

// NewRosters creates a new Rosters handler group. cache may be nil.
func NewRosters(api *efood.Client, cache CatalogCache, sessions SessionStore) *Rosters {
	return &Rosters{
		src:      &source{api: api, cache: cache},
		sessions: sessions,
	}
}

// dashboardResponse holds the headline counts. Vendor and driver counts
// are omitted for vendors.
type dashboardResponse struct {
	Categories     int  `json:"categories"`
	CategoryNodes  int  `json:"categoryNodes"`
	OrphanCategory int  `json:"orphanCategories"`
	Items          int  `json:"items"`
	Vendors        *int `json:"vendors,omitempty"`
	Drivers        *int `json:"drivers,omitempty"`
}

// itemScope returns the vendor id an item listing is restricted to.
// Vendors always see their own items; admins may pass ?vendor_id=.
func itemScope(r *http.Request) string {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.Role == efood.RoleVendor {
		return strconv.FormatInt(sess.UserID, 10)
	}
	return r.URL.Query().Get("vendor_id")
}

// Dashboard returns the headline counts, fetched concurrently.
func (h *Rosters) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var resp dashboardResponse

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		tree, err := h.src.tree(ctx, sess, false)
		if err != nil {
			return err
		}
		resp.Categories = tree.Len()
		resp.CategoryNodes = tree.Count()
		resp.OrphanCategory = len(tree.Orphans())
		return nil
	})
	g.Go(func() error {
		items, err := h.src.items(ctx, sess.APIToken, itemScope(r))
		if err != nil {
			return err
		}
		resp.Items = len(items)
		return nil
	})
	if sess.IsAdmin() {
		var vendors, drivers int
		g.Go(func() error {
			users, err := h.src.api.ListUsers(ctx, sess.APIToken, efood.RoleVendor)
			vendors = len(users)
			return err
		})
		g.Go(func() error {
			users, err := h.src.api.ListUsers(ctx, sess.APIToken, efood.RoleDriver)
			drivers = len(users)
			return err
		})
		resp.Vendors = &vendors
		resp.Drivers = &drivers
	}

	if err := g.Wait(); err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}
	render.JSON(w, http.StatusOK, resp)
}

// Items lists menu items. Query parameters: q, page, per_page, vendor_id
// (admins only).
func (h *Rosters) Items(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	items, err := h.src.items(r.Context(), sess.APIToken, itemScope(r))
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}

	page, perPage := pageParams(r)
	render.JSON(w, http.StatusOK, paginate(filterRecords(items, r.URL.Query().Get("q")), page, perPage))
}

// Vendors lists vendor accounts.
func (h *Rosters) Vendors(w http.ResponseWriter, r *http.Request) {
	h.users(w, r, efood.RoleVendor)
}

// Drivers lists delivery drivers.
func (h *Rosters) Drivers(w http.ResponseWriter, r *http.Request) {
	h.users(w, r, efood.RoleDriver)
}

func (h *Rosters) users(w http.ResponseWriter, r *http.Request, role string) {
	sess := middleware.SessionFromCtx(r.Context())

	users, err := h.src.api.ListUsers(r.Context(), sess.APIToken, role)
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}

	page, perPage := pageParams(r)
	render.JSON(w, http.StatusOK, paginate(filterRecords(users, r.URL.Query().Get("q")), page, perPage))
}

// Orders lists orders. Query parameters: status, q, page, per_page.
func (h *Rosters) Orders(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	orders, err := h.src.api.ListOrders(r.Context(), sess.APIToken, r.URL.Query().Get("status"))
	if err != nil {
		upstreamFailed(w, r, h.sessions, err)
		return
	}

	page, perPage := pageParams(r)
	render.JSON(w, http.StatusOK, paginate(filterRecords(orders, r.URL.Query().Get("q")), page, perPage))
}
