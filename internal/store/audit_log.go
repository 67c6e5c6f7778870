// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// audit_log.go records category mutations made through the dashboard.
// Each entry captures who changed which category, when, and how.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionCover  = "cover"
)

// AuditLogStore handles category audit log operations.
type AuditLogStore struct {
	db *sql.DB
}

// NewAuditLogStore creates a new AuditLogStore.
func NewAuditLogStore(db *sql.DB) *AuditLogStore {
	return &AuditLogStore{db: db}
}

// Log records a category mutation. It is best-effort: a failure is logged
// and otherwise ignored, since the mutation already happened upstream.
func (s *AuditLogStore) Log(ctx context.Context, userID int64, categoryID int, action, detail string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_audit_log (user_id, category_id, action, detail)
		VALUES ($1, $2, $3, $4)
	`, userID, categoryID, action, detail)
	if err != nil {
		slog.Warn("failed to write category audit log",
			"user_id", userID,
			"category_id", categoryID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("category audit logged",
		"user_id", userID,
		"category_id", categoryID,
		"action", action,
	)
}

// AuditEntry represents a single category mutation.
type AuditEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	CategoryID int64     `json:"categoryId"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Recent returns the most recent audit entries, newest first.
func (s *AuditLogStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, action, detail, created_at
		FROM category_audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
