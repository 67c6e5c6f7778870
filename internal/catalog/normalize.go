// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize converts raw upstream records into canonical categories.
// It never fails: missing optional fields fall back to defaults.
func Normalize(raw []map[string]any) []Category {
	out := make([]Category, 0, len(raw))
	for _, rec := range raw {
		out = append(out, NormalizeRecord(rec))
	}
	return out
}

// NormalizeRecord converts a single raw record. The snake_case field wins
// over its camelCase alias; when neither is usable the zero default applies.
func NormalizeRecord(raw map[string]any) Category {
	c := Category{
		ID:                toInt(raw["id"]),
		CategoryName:      stringField(raw, "category_name", "categoryName"),
		ShortDescription:  stringField(raw, "short_description", "shortDescription"),
		LongDescription:   stringField(raw, "long_description", "longDescription"),
		IsSubCategory:     boolField(raw, "is_sub_category", "isSubCategory"),
		CoverImage:        stringField(raw, "cover_image", "coverImage"),
		ParentCategoryIDs: parentIDs(raw),
		CreatedAt:         stringField(raw, "created_at", "createdAt"),
		UpdatedAt:         stringField(raw, "updated_at", "updatedAt"),
	}
	if c.CoverImage == "" {
		c.CoverImage = PlaceholderCoverImage
	}
	return c
}

// parentIDs reads the parent list from parent_categories (objects carrying
// an id) and falls back to a bare id array.
func parentIDs(raw map[string]any) []int {
	for _, key := range []string{"parent_categories", "parentCategories"} {
		items, ok := raw[key].([]any)
		if !ok {
			continue
		}
		ids := make([]int, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := intValue(obj["id"]); ok {
				ids = append(ids, id)
			}
		}
		return ids
	}

	for _, key := range []string{"parent_category_ids", "parentCategoryIds"} {
		items, ok := raw[key].([]any)
		if !ok {
			continue
		}
		ids := make([]int, 0, len(items))
		for _, item := range items {
			if id, ok := intValue(item); ok {
				ids = append(ids, id)
			}
		}
		return ids
	}

	return []int{}
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func boolField(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		v, present := raw[key]
		if !present || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			s := strings.ToLower(strings.TrimSpace(b))
			return s == "true" || s == "1"
		default:
			n, ok := intValue(v)
			return ok && n != 0
		}
	}
	return false
}

// toInt returns the integer form of v, or 0 when it cannot be read.
func toInt(v any) int {
	n, _ := intValue(v)
	return n
}

// intValue accepts the shapes an id takes after JSON decoding: float64,
// json.Number, numeric strings and native ints.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
