// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"efoodadmin/internal/cache"
	"efoodadmin/internal/catalog"
	"efoodadmin/internal/efood"
	"efoodadmin/internal/session"
)

// source reads upstream collections through the catalog cache.
type source struct {
	api   *efood.Client
	cache CatalogCache // nil disables caching
}

// cached returns the records stored under key, or fetches and stores them.
// reload bypasses the cached copy.
func (s *source) cached(ctx context.Context, key string, reload bool, fetch func() ([]efood.Record, error)) ([]efood.Record, error) {
	if s.cache != nil && !reload {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var records []efood.Record
			dec := json.NewDecoder(bytes.NewReader(payload))
			dec.UseNumber()
			if err := dec.Decode(&records); err == nil {
				return records, nil
			}
			slog.Warn("discarding unreadable catalog cache entry", "key", key)
		}
	}

	records, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(records); err == nil {
			s.cache.Set(ctx, key, payload)
		} else {
			slog.Warn("catalog cache marshal failed", "key", key, "error", err)
		}
	}
	return records, nil
}

// tree loads the category collection visible to sess and builds the forest.
func (s *source) tree(ctx context.Context, sess *session.Data, reload bool) (*catalog.Tree, error) {
	records, err := s.cached(ctx, cache.CategoriesKey(categoryScope(sess)), reload, func() ([]efood.Record, error) {
		return s.api.ListCategories(ctx, sess.APIToken)
	})
	if err != nil {
		return nil, err
	}
	return catalog.BuildTree(catalog.Normalize(records)), nil
}

// categoryScope partitions the category cache. Admins share one entry;
// every other user gets their own, since the upstream answer depends on
// the token.
func categoryScope(sess *session.Data) string {
	if sess.IsAdmin() {
		return ""
	}
	return sess.Role + ":" + strconv.FormatInt(sess.UserID, 10)
}

// items loads the item roster, scoped to vendorID when non-empty.
func (s *source) items(ctx context.Context, token, vendorID string) ([]efood.Record, error) {
	return s.cached(ctx, cache.ItemsKey(vendorID), false, func() ([]efood.Record, error) {
		return s.api.ListItems(ctx, token, vendorID)
	})
}

// invalidate drops every cached collection after a mutation.
func (s *source) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}
