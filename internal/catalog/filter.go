// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "strings"

// MatchesSearch reports whether term occurs, case-insensitively, in the
// category's name or descriptions. The term is used as typed, surrounding
// spaces included. An empty term matches everything.
func MatchesSearch(c *Category, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.CategoryName), term) ||
		strings.Contains(strings.ToLower(c.ShortDescription), term) ||
		strings.Contains(strings.ToLower(c.LongDescription), term)
}

// MatchesType reports whether the category passes the type filter.
func MatchesType(c *Category, filter FilterType) bool {
	switch filter {
	case FilterParent:
		return !c.IsSubCategory
	case FilterSub:
		return c.IsSubCategory
	default:
		return true
	}
}

// FilterTree returns a new tree holding only the nodes that match both the
// search term and the type filter, plus every ancestor of such a node.
// Sibling order is preserved. The source tree is left untouched; the result
// shares its arena.
func FilterTree(t *Tree, term string, filter FilterType) *Tree {
	return &Tree{
		arena:    t.arena,
		order:    t.order,
		children: t.children,
		orphans:  t.orphans,
		Roots:    filterNodes(t, t.Roots, term, filter),
	}
}

func filterNodes(t *Tree, nodes []Node, term string, filter FilterType) []Node {
	var out []Node
	for _, n := range nodes {
		kept := filterNodes(t, n.Children, term, filter)
		c := t.arena[n.ID]
		if len(kept) > 0 || (MatchesSearch(c, term) && MatchesType(c, filter)) {
			out = append(out, Node{ID: n.ID, Children: kept})
		}
	}
	return out
}
