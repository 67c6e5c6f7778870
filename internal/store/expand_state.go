// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for the state the dashboard owns
// itself: per-user category expand state and the category audit trail.
// Category data proper lives in the upstream eFood API.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"efoodadmin/internal/catalog"
)

// ExpandStateStore persists which categories each user has expanded.
type ExpandStateStore struct {
	db *sql.DB
}

// NewExpandStateStore returns a new ExpandStateStore.
func NewExpandStateStore(db *sql.DB) *ExpandStateStore {
	return &ExpandStateStore{db: db}
}

// Load returns the expand state saved for userID. A user with no saved
// state gets an empty set.
func (s *ExpandStateStore) Load(ctx context.Context, userID int64) (*catalog.ExpandState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id FROM category_expand_state WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load expand state: %w", err)
	}
	defer rows.Close()

	state := catalog.NewExpandState()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expand state: %w", err)
		}
		state.Expand(int(id))
	}
	return state, rows.Err()
}

// Set records a single category as expanded or collapsed.
func (s *ExpandStateStore) Set(ctx context.Context, userID int64, categoryID int, expanded bool) error {
	var err error
	if expanded {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO category_expand_state (user_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, category_id) DO NOTHING
		`, userID, categoryID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM category_expand_state WHERE user_id = $1 AND category_id = $2
		`, userID, categoryID)
	}
	if err != nil {
		return fmt.Errorf("set expand state %d: %w", categoryID, err)
	}
	return nil
}

// Forget removes saved state for categories that no longer exist. It is
// called with the ids ExpandState.Reconcile dropped after a reload.
func (s *ExpandStateStore) Forget(ctx context.Context, userID int64, categoryIDs []int) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		DELETE FROM category_expand_state WHERE user_id = $1 AND category_id = $2`)
	if err != nil {
		return fmt.Errorf("prepare forget: %w", err)
	}
	defer stmt.Close()

	for _, id := range categoryIDs {
		if _, err := stmt.ExecContext(ctx, userID, id); err != nil {
			return fmt.Errorf("forget expand state %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// ForgetCategory removes a deleted category from every user's state.
func (s *ExpandStateStore) ForgetCategory(ctx context.Context, categoryID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM category_expand_state WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("forget category %d: %w", categoryID, err)
	}
	return nil
}
