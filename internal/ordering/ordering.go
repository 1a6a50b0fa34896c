// Package ordering computes sort-order assignments for drag gestures.
// It is pure: callers pass the full item set for a list plus the gesture,
// and get back the batch of (id, category_id, sort_order) triples to apply.
//
// Only unchecked items participate. Checked items live in a separate,
// non-reorderable section; their sort_order is frozen and never renumbered
// here.
package ordering

import (
	"sort"

	"packlist/internal/model"
)

type TargetKind int

const (
	// TargetItem means the pointer dropped onto another item row.
	TargetItem TargetKind = iota
	// TargetCategory means the pointer dropped onto a category container
	// (no specific item), which appends at the end of that category.
	TargetCategory
)

// Target is what the dragged item was dropped onto.
type Target struct {
	Kind TargetKind
	ID   int64
}

func ItemTarget(itemID int64) Target    { return Target{Kind: TargetItem, ID: itemID} }
func CategoryTarget(catID int64) Target { return Target{Kind: TargetCategory, ID: catID} }

// PlanMove computes the change batch for a completed drag gesture.
//
// sourceCategoryID is the dragged item's category captured at drag start.
// It can differ from the item's current category_id in `items` when a
// provisional drag-over relocation already moved the item in local state.
//
// The returned batch renumbers the target category's unchecked sequence
// 0..n-1 (and, for a cross-category move, the shrunk source sequence too,
// so both sides stay dense). Degenerate gestures — dropping an item onto
// itself, an unresolvable target, a checked dragged item — yield an empty
// batch.
func PlanMove(items []model.Item, draggedID, sourceCategoryID int64, target Target) []model.ItemPosition {
	dragged := findItem(items, draggedID)
	if dragged == nil || dragged.IsChecked.Bool() {
		return nil
	}

	var targetCategoryID int64
	var overItemID int64 // 0 = dropped onto a category container
	switch target.Kind {
	case TargetCategory:
		targetCategoryID = target.ID
	case TargetItem:
		over := findItem(items, target.ID)
		if over == nil {
			return nil
		}
		overItemID = over.ID
		targetCategoryID = over.CategoryID
	default:
		return nil
	}

	sameCategory := sourceCategoryID == targetCategoryID

	var sequence []model.Item
	if sameCategory && overItemID != 0 {
		// Intra-category move onto an item: list-move semantics. The dragged
		// item lands exactly where the target was, pushing the target and
		// everything after it by one slot.
		catItems := uncheckedInCategory(items, targetCategoryID, 0)
		oldIdx := indexOf(catItems, draggedID)
		newIdx := indexOf(catItems, overItemID)
		if oldIdx < 0 || newIdx < 0 || oldIdx == newIdx {
			return nil
		}
		sequence = listMove(catItems, oldIdx, newIdx)
	} else {
		// Cross-category (or drop onto own category container): remove from
		// wherever the item currently sits, insert at the target item's
		// position, or at the end when there is no resolvable target item.
		targetItems := uncheckedInCategory(items, targetCategoryID, draggedID)
		insertIdx := len(targetItems)
		if overItemID != 0 {
			if idx := indexOf(targetItems, overItemID); idx >= 0 {
				insertIdx = idx
			}
		}
		sequence = make([]model.Item, 0, len(targetItems)+1)
		sequence = append(sequence, targetItems[:insertIdx]...)
		sequence = append(sequence, *dragged)
		sequence = append(sequence, targetItems[insertIdx:]...)
	}

	batch := renumber(sequence, targetCategoryID)
	if !sameCategory {
		// The source category's own items must stay dense after the removal.
		source := uncheckedInCategory(items, sourceCategoryID, draggedID)
		batch = append(batch, renumber(source, sourceCategoryID)...)
	}
	return batch
}

// ProvisionalOrder computes the sort_order for the drag-over relocation:
// the dragged item provisionally lands at the end of the hovered category.
// Rendering-only; the authoritative order comes from PlanMove at drop time.
func ProvisionalOrder(items []model.Item, categoryID, draggedID int64) int {
	max := -1
	for i := range items {
		if items[i].CategoryID != categoryID || items[i].ID == draggedID {
			continue
		}
		if items[i].SortOrder > max {
			max = items[i].SortOrder
		}
	}
	return max + 1
}

// DisplayCategories is the category display-order snapshot taken at drag
// start: categories holding unchecked items first (in their configured
// order), then the rest. Freezing this for the gesture keeps category
// containers from reflowing mid-drag as items move out.
func DisplayCategories(categories []model.Category, items []model.Item) []model.Category {
	used := map[int64]bool{}
	for i := range items {
		if !items[i].IsChecked.Bool() {
			used[items[i].CategoryID] = true
		}
	}
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if used[c.ID] {
			out = append(out, c)
		}
	}
	for _, c := range categories {
		if !used[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// uncheckedInCategory returns the ascending-sort_order unchecked sequence of
// one category, excluding excludeID when non-zero.
func uncheckedInCategory(items []model.Item, categoryID, excludeID int64) []model.Item {
	out := []model.Item{}
	for i := range items {
		it := items[i]
		if it.IsChecked.Bool() || it.CategoryID != categoryID || it.ID == excludeID {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// listMove removes the element at from and reinserts it at index to,
// shifting everything in between by one slot.
func listMove(items []model.Item, from, to int) []model.Item {
	rest := make([]model.Item, 0, len(items))
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	out := make([]model.Item, 0, len(items))
	out = append(out, rest[:to]...)
	out = append(out, items[from])
	out = append(out, rest[to:]...)
	return out
}

func renumber(sequence []model.Item, categoryID int64) []model.ItemPosition {
	out := make([]model.ItemPosition, 0, len(sequence))
	for i, it := range sequence {
		out = append(out, model.ItemPosition{ID: it.ID, CategoryID: categoryID, SortOrder: i})
	}
	return out
}

func findItem(items []model.Item, id int64) *model.Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func indexOf(items []model.Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
