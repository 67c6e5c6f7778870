// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package efood

import (
	"context"
	"net/url"
)

// User roles known to the upstream API.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
	RoleDriver = "driver"
)

// ListItems returns menu items. vendorID restricts the list to one vendor
// when non-empty.
func (c *Client) ListItems(ctx context.Context, token, vendorID string) ([]Record, error) {
	q := url.Values{}
	if vendorID != "" {
		q.Set("vendor_id", vendorID)
	}
	return c.list(ctx, "/items", token, q)
}

// ListUsers returns users with the given role (vendor or driver).
func (c *Client) ListUsers(ctx context.Context, token, role string) ([]Record, error) {
	q := url.Values{}
	q.Set("role", role)
	return c.list(ctx, "/users", token, q)
}

// ListOrders returns orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, token, status string) ([]Record, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	return c.list(ctx, "/orders", token, q)
}
