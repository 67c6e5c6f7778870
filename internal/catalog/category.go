// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog turns the flat category collection returned by the eFood
// API into the forest the dashboard displays. Everything here is a pure
// in-memory transformation: normalize raw records, build the tree, filter
// it by search term and category type, count and flatten it for display.
package catalog

import "strings"

// PlaceholderCoverImage is used when a category has no cover image.
const PlaceholderCoverImage = "/static/img/category-placeholder.png"

// Category is the canonical form of an upstream category record.
type Category struct {
	ID                int    `json:"id"`
	CategoryName      string `json:"categoryName"`
	ShortDescription  string `json:"shortDescription"`
	LongDescription   string `json:"longDescription"`
	IsSubCategory     bool   `json:"isSubCategory"`
	CoverImage        string `json:"coverImage"`
	ParentCategoryIDs []int  `json:"parentCategoryIds"`
	CreatedAt         string `json:"createdAt,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
}

// IsRoot reports whether the category is placed at the top of the forest.
// Sub-categories without any declared parent are treated as roots too.
func (c *Category) IsRoot() bool {
	return !c.IsSubCategory || len(c.ParentCategoryIDs) == 0
}

// FilterType restricts which categories match independently of the search term.
type FilterType string

const (
	FilterAll    FilterType = "all"
	FilterParent FilterType = "parent"
	FilterSub    FilterType = "sub"
)

// ParseFilterType maps a query value to a FilterType. Unknown values mean all.
func ParseFilterType(s string) FilterType {
	switch FilterType(strings.ToLower(strings.TrimSpace(s))) {
	case FilterParent:
		return FilterParent
	case FilterSub:
		return FilterSub
	default:
		return FilterAll
	}
}
