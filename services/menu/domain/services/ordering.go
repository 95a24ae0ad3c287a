// Package services contains stateless domain services for the menu bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ghuser/bizdir/services/menu/domain/models"
)

// SortByOrder sorts items ascending by Order, breaking ties by ID so that
// listings are deterministic even while transient ties exist.
func SortByOrder(items []*models.MenuItem) {
	slices.SortStableFunc(items, func(a, b *models.MenuItem) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// IDs returns the item ids in slice order.
func IDs(items []*models.MenuItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Move returns a copy of ids with the element at from removed and re-inserted
// at to. Indexes outside the slice are clamped. It never swaps.
func Move[T any](ids []T, from, to int) []T {
	out := slices.Clone(ids)
	if len(out) == 0 || from < 0 || from >= len(out) {
		return out
	}
	to = max(0, min(to, len(out)-1))
	if from == to {
		return out
	}
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

// MoveID moves id to index to, using the same remove-then-insert semantics as Move.
func MoveID(ids []uuid.UUID, id uuid.UUID, to int) ([]uuid.UUID, error) {
	from := slices.Index(ids, id)
	if from < 0 {
		return nil, fmt.Errorf("id %s is not in the list", id)
	}
	return Move(ids, from, to), nil
}

// CheckPermutation verifies that ordered contains exactly the ids in current:
// no additions, no omissions, no duplicates.
func CheckPermutation(current, ordered []uuid.UUID) error {
	if len(ordered) != len(current) {
		return fmt.Errorf("expected %d ids, got %d", len(current), len(ordered))
	}
	members := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		members[id] = false
	}
	for _, id := range ordered {
		seen, ok := members[id]
		if !ok {
			return fmt.Errorf("id %s is not a member of the bucket", id)
		}
		if seen {
			return fmt.Errorf("id %s appears more than once", id)
		}
		members[id] = true
	}
	return nil
}

// CheckDistinct rejects id lists containing duplicates or the nil uuid.
func CheckDistinct(ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return fmt.Errorf("nil id in list")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("id %s appears more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Arrange returns items rearranged to follow ordered, after checking that
// ordered is an exact permutation of the items' ids. The result is a new slice;
// the caller decides how to renumber.
func Arrange[T any](items []T, idOf func(T) uuid.UUID, ordered []uuid.UUID) ([]T, error) {
	current := make([]uuid.UUID, len(items))
	byID := make(map[uuid.UUID]T, len(items))
	for i, it := range items {
		current[i] = idOf(it)
		byID[current[i]] = it
	}
	if err := CheckPermutation(current, ordered); err != nil {
		return nil, err
	}
	out := make([]T, len(ordered))
	for i, id := range ordered {
		out[i] = byID[id]
	}
	return out, nil
}

// NextOrder returns the order value for an item appended to items:
// max(order)+1, or 0 for an empty bucket.
func NextOrder(items []*models.MenuItem) int {
	next := 0
	for _, it := range items {
		if it.Order >= next {
			next = it.Order + 1
		}
	}
	return next
}
