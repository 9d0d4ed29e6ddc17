package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidOrder = errors.New("order must list every sibling exactly once")

// Position is one {id, sortOrder} pair of a reorder request.
type Position struct {
	ID        string `json:"id" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// Renumber ranks the submitted positions by SortOrder, falling back to
// submission order on ties, and assigns 0..N-1. The submission must name
// each of siblings exactly once.
func Renumber(order []Position, siblings []string) ([]Position, error) {
	if len(order) != len(siblings) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrInvalidOrder, len(order), len(siblings))
	}
	known := make(map[string]bool, len(siblings))
	for _, id := range siblings {
		known[id] = true
	}
	seen := make(map[string]bool, len(order))
	for _, p := range order {
		if !known[p.ID] {
			return nil, fmt.Errorf("%w: unknown id %q", ErrInvalidOrder, p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidOrder, p.ID)
		}
		seen[p.ID] = true
	}

	out := make([]Position, len(order))
	copy(out, order)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	for i := range out {
		out[i].SortOrder = i
	}
	return out, nil
}

// SortCategories orders by SortOrder then CreatedAt, the display order.
func SortCategories(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].SortOrder != cs[j].SortOrder {
			return cs[i].SortOrder < cs[j].SortOrder
		}
		return cs[i].CreatedAt.Before(cs[j].CreatedAt)
	})
}
