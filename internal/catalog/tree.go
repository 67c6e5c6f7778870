// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

// Node is one appearance of a category in the forest. It only references
// the category by id; the data itself lives once in the tree's arena, so a
// category with several parents appears as several nodes sharing one entry.
type Node struct {
	ID       int
	Children []Node
}

// Tree is a forest of categories plus the arena the nodes point into.
// A Tree is rebuilt from the flat collection on every change and is never
// mutated afterwards.
type Tree struct {
	arena    map[int]*Category
	order    []int
	children map[int][]int // parent id -> resolved child ids, input order
	orphans  []int
	Roots    []Node
}

// BuildTree converts a flat category collection into a forest.
//
// Roots are the categories that are not sub-categories or that declare no
// parent, in input order. A sub-category is attached under every parent id
// that resolves to a known category. Parent ids that do not resolve are
// skipped, and a sub-category with no resolvable parent is left out of the
// forest entirely, together with everything below it (see Orphans).
func BuildTree(categories []Category) *Tree {
	t := &Tree{arena: make(map[int]*Category, len(categories))}
	for i := range categories {
		c := &categories[i]
		if _, dup := t.arena[c.ID]; dup {
			continue
		}
		t.arena[c.ID] = c
		t.order = append(t.order, c.ID)
	}

	var rootIDs []int
	children := make(map[int][]int)
	for _, id := range t.order {
		c := t.arena[id]
		if c.IsRoot() {
			rootIDs = append(rootIDs, id)
			continue
		}

		seen := make(map[int]bool, len(c.ParentCategoryIDs))
		for _, pid := range c.ParentCategoryIDs {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			if _, ok := t.arena[pid]; !ok {
				continue
			}
			children[pid] = append(children[pid], id)
		}
	}
	t.children = children

	path := make(map[int]bool)
	for _, id := range rootIDs {
		t.Roots = append(t.Roots, expand(id, children, path))
	}

	visible := make(map[int]bool, len(t.order))
	markVisible(t.Roots, visible)
	for _, id := range t.order {
		if !visible[id] {
			t.orphans = append(t.orphans, id)
		}
	}
	return t
}

func markVisible(nodes []Node, visible map[int]bool) {
	for _, n := range nodes {
		visible[n.ID] = true
		markVisible(n.Children, visible)
	}
}

// expand builds the node for id and its descendants. An id already on the
// current ancestor path is not expanded again, which keeps malformed cyclic
// input from recursing forever.
func expand(id int, children map[int][]int, path map[int]bool) Node {
	n := Node{ID: id}
	path[id] = true
	for _, cid := range children[id] {
		if path[cid] {
			continue
		}
		n.Children = append(n.Children, expand(cid, children, path))
	}
	delete(path, id)
	return n
}

// Category returns the arena entry for id.
func (t *Tree) Category(id int) (*Category, bool) {
	c, ok := t.arena[id]
	return c, ok
}

// Has reports whether id is part of the collection the tree was built from,
// whether or not it is visible in the forest.
func (t *Tree) Has(id int) bool {
	_, ok := t.arena[id]
	return ok
}

// Len returns the number of distinct categories in the collection.
func (t *Tree) Len() int {
	return len(t.order)
}

// Count returns the number of node appearances in the forest.
func (t *Tree) Count() int {
	return CountNodes(t.Roots)
}

// Categories returns the collection in input order.
func (t *Tree) Categories() []*Category {
	out := make([]*Category, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.arena[id])
	}
	return out
}

// Orphans returns, in input order, every category that appears nowhere in
// the forest: sub-categories none of whose parent ids resolve, and all
// categories that only hang below them.
func (t *Tree) Orphans() []*Category {
	out := make([]*Category, 0, len(t.orphans))
	for _, id := range t.orphans {
		out = append(out, t.arena[id])
	}
	return out
}

// CountNodes sums one per node plus all of its descendants.
func CountNodes(roots []Node) int {
	total := 0
	for _, n := range roots {
		total += 1 + CountNodes(n.Children)
	}
	return total
}

// ViewNode is the nested JSON shape of a tree for the dashboard.
type ViewNode struct {
	*Category
	Children []ViewNode `json:"children"`
}

// View resolves every node against the arena into a nested structure.
func (t *Tree) View() []ViewNode {
	return t.view(t.Roots)
}

func (t *Tree) view(nodes []Node) []ViewNode {
	out := make([]ViewNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ViewNode{
			Category: t.arena[n.ID],
			Children: t.view(n.Children),
		})
	}
	return out
}
