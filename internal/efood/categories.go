// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package efood

import (
	"context"
	"fmt"
	"net/http"
)

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	CategoryName      string `json:"category_name"`
	ShortDescription  string `json:"short_description"`
	LongDescription   string `json:"long_description"`
	IsSubCategory     bool   `json:"is_sub_category"`
	CoverImage        string `json:"cover_image,omitempty"`
	ParentCategoryIDs []int  `json:"parent_category_ids"`
}

// ListCategories returns the full flat category collection as raw records.
func (c *Client) ListCategories(ctx context.Context, token string) ([]Record, error) {
	return c.list(ctx, "/categories", token, nil)
}

// CreateCategory creates a category and returns the upstream record.
func (c *Client) CreateCategory(ctx context.Context, token string, in CategoryInput) (Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodPost, "/categories", token, nil, in, &out); err != nil {
		return nil, err
	}
	return unwrap(out), nil
}

// UpdateCategory replaces a category's fields.
func (c *Client) UpdateCategory(ctx context.Context, token string, id int, in CategoryInput) (Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), token, nil, in, &out); err != nil {
		return nil, err
	}
	return unwrap(out), nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), token, nil, nil, nil)
}

// unwrap strips a {"data": {...}} envelope from a single-record response.
func unwrap(r Record) Record {
	if inner, ok := r["data"].(map[string]any); ok {
		return inner
	}
	return r
}
