// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrParentRequired is returned for a sub-category without parents.
	ErrParentRequired = errors.New("a sub-category needs at least one parent category")
	// ErrSelfParent is returned when a category lists itself as a parent.
	ErrSelfParent = errors.New("a category cannot be its own parent")
	// ErrUnknownParent is returned for a parent id missing from the collection.
	ErrUnknownParent = errors.New("unknown parent category")
	// ErrParentCycle is returned when a parent is already a descendant.
	ErrParentCycle = errors.New("parent category is a descendant of this category")
)

// ValidateParents checks the parent list submitted for category id against
// the current collection and returns it deduplicated. Roots drop their
// parents. id is 0 for a category that does not exist yet.
func ValidateParents(t *Tree, id int, isSub bool, parentIDs []int) ([]int, error) {
	if !isSub {
		return []int{}, nil
	}
	if len(parentIDs) == 0 {
		return nil, ErrParentRequired
	}

	var below map[int]bool
	if id != 0 {
		below = descendants(t, id)
	}

	seen := make(map[int]bool, len(parentIDs))
	out := make([]int, 0, len(parentIDs))
	for _, pid := range parentIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if id != 0 && pid == id {
			return nil, ErrSelfParent
		}
		if !t.Has(pid) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownParent, pid)
		}
		if below[pid] {
			return nil, fmt.Errorf("%w: %d", ErrParentCycle, pid)
		}
		out = append(out, pid)
	}
	return out, nil
}

// descendants collects every id below id in the collection, following
// resolved parent links whether or not they are visible in the forest.
func descendants(t *Tree, id int) map[int]bool {
	out := make(map[int]bool)
	stack := append([]int(nil), t.children[id]...)
	for len(stack) > 0 {
		cid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[cid] {
			continue
		}
		out[cid] = true
		stack = append(stack, t.children[cid]...)
	}
	return out
}
