// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "sort"

// ExpandState is the set of category ids whose children are shown.
// It is keyed by id rather than position so it survives a rebuild.
type ExpandState struct {
	ids map[int]struct{}
}

// NewExpandState returns a state with the given ids expanded.
func NewExpandState(ids ...int) *ExpandState {
	s := &ExpandState{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// IsExpanded reports whether id is expanded.
func (s *ExpandState) IsExpanded(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Expand marks id as expanded.
func (s *ExpandState) Expand(id int) {
	s.ids[id] = struct{}{}
}

// Collapse marks id as collapsed.
func (s *ExpandState) Collapse(id int) {
	delete(s.ids, id)
}

// Toggle flips id and returns its new state.
func (s *ExpandState) Toggle(id int) bool {
	if s.IsExpanded(id) {
		s.Collapse(id)
		return false
	}
	s.Expand(id)
	return true
}

// IDs returns the expanded ids in ascending order.
func (s *ExpandState) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Reconcile drops ids that no longer exist in the collection and returns
// them. Ids that still exist keep their state, even if they moved.
func (s *ExpandState) Reconcile(t *Tree) []int {
	var dropped []int
	for id := range s.ids {
		if !t.Has(id) {
			dropped = append(dropped, id)
			delete(s.ids, id)
		}
	}
	sort.Ints(dropped)
	return dropped
}

// Row is one line of the rendered tree.
type Row struct {
	ID          int
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Rows walks the forest depth-first and returns the visible rows. Children
// are only emitted under nodes expanded in state. A nil state shows only
// the roots.
func Rows(t *Tree, state *ExpandState) []Row {
	var out []Row
	walk(t.Roots, 0, func(n Node, depth int) bool {
		open := state != nil && state.IsExpanded(n.ID)
		out = append(out, Row{ID: n.ID, Depth: depth, HasChildren: len(n.Children) > 0, Expanded: open})
		return open
	})
	return out
}

// Flatten returns every node of the forest depth-first, as if all were expanded.
// len(Flatten(t)) == t.Count().
func Flatten(t *Tree) []Row {
	var out []Row
	walk(t.Roots, 0, func(n Node, depth int) bool {
		out = append(out, Row{ID: n.ID, Depth: depth, HasChildren: len(n.Children) > 0, Expanded: true})
		return true
	})
	return out
}

// walk visits nodes depth-first; descend decides whether to enter a node's children.
func walk(nodes []Node, depth int, descend func(Node, int) bool) {
	for _, n := range nodes {
		if descend(n, depth) {
			walk(n.Children, depth+1, descend)
		}
	}
}
