package ordering

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"packlist/internal/model"
)

const (
	catClothes = int64(1)
	catTech    = int64(2)
)

func item(id int64, cat int64, order int, checked bool) model.Item {
	return model.Item{ID: id, ListID: 1, CategoryID: cat, SortOrder: order, IsChecked: model.Flag(checked)}
}

func TestPlanMoveIntraCategory(t *testing.T) {
	// Clothes: A(0), B(1), C(2). Dragging A onto C's position.
	items := []model.Item{
		item(10, catClothes, 0, false), // A
		item(11, catClothes, 1, false), // B
		item(12, catClothes, 2, false), // C
	}

	got := PlanMove(items, 10, catClothes, ItemTarget(12))
	want := []model.ItemPosition{
		{ID: 11, CategoryID: catClothes, SortOrder: 0}, // B
		{ID: 12, CategoryID: catClothes, SortOrder: 1}, // C
		{ID: 10, CategoryID: catClothes, SortOrder: 2}, // A
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMoveIntraCategoryUpward(t *testing.T) {
	items := []model.Item{
		item(10, catClothes, 0, false),
		item(11, catClothes, 1, false),
		item(12, catClothes, 2, false),
	}

	// Dragging C onto A's position: C lands first, A and B shift down.
	got := PlanMove(items, 12, catClothes, ItemTarget(10))
	want := []model.ItemPosition{
		{ID: 12, CategoryID: catClothes, SortOrder: 0},
		{ID: 10, CategoryID: catClothes, SortOrder: 1},
		{ID: 11, CategoryID: catClothes, SortOrder: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMoveSelfDropIsNoop(t *testing.T) {
	items := []model.Item{
		item(10, catClothes, 0, false),
		item(11, catClothes, 1, false),
	}
	if got := PlanMove(items, 10, catClothes, ItemTarget(10)); len(got) != 0 {
		t.Fatalf("expected empty batch, got %v", got)
	}
}

func TestPlanMoveCrossCategoryOntoContainer(t *testing.T) {
	// Clothes: A(0), B(1). Tech: X(0). Dragging A onto the Tech container
	// appends A after X and renumbers Clothes' remaining item to 0.
	items := []model.Item{
		item(10, catClothes, 0, false), // A
		item(11, catClothes, 1, false), // B
		item(20, catTech, 0, false),    // X
	}

	got := PlanMove(items, 10, catClothes, CategoryTarget(catTech))
	want := []model.ItemPosition{
		{ID: 20, CategoryID: catTech, SortOrder: 0},
		{ID: 10, CategoryID: catTech, SortOrder: 1},
		{ID: 11, CategoryID: catClothes, SortOrder: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMoveCrossCategoryOntoItem(t *testing.T) {
	// Dropping A onto X inserts A at X's position (X shifts down).
	items := []model.Item{
		item(10, catClothes, 0, false), // A
		item(11, catClothes, 1, false), // B
		item(20, catTech, 0, false),    // X
		item(21, catTech, 1, false),    // Y
	}

	got := PlanMove(items, 10, catClothes, ItemTarget(20))
	want := []model.ItemPosition{
		{ID: 10, CategoryID: catTech, SortOrder: 0},
		{ID: 20, CategoryID: catTech, SortOrder: 1},
		{ID: 21, CategoryID: catTech, SortOrder: 2},
		{ID: 11, CategoryID: catClothes, SortOrder: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMoveAfterProvisionalRelocation(t *testing.T) {
	// Drag-over already moved A into Tech locally (provisional sort_order at
	// the end). At drop time the source category is still Clothes.
	items := []model.Item{
		item(10, catTech, 2, false),    // A, provisionally relocated
		item(11, catClothes, 1, false), // B
		item(20, catTech, 0, false),    // X
		item(21, catTech, 1, false),    // Y
	}

	got := PlanMove(items, 10, catClothes, CategoryTarget(catTech))
	want := []model.ItemPosition{
		{ID: 20, CategoryID: catTech, SortOrder: 0},
		{ID: 21, CategoryID: catTech, SortOrder: 1},
		{ID: 10, CategoryID: catTech, SortOrder: 2},
		{ID: 11, CategoryID: catClothes, SortOrder: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMoveExcludesCheckedItems(t *testing.T) {
	// Checked items are frozen: no entry in the batch, and they don't occupy
	// positions in the unchecked sequence.
	items := []model.Item{
		item(10, catClothes, 0, false),
		item(11, catClothes, 1, true), // checked, frozen
		item(12, catClothes, 2, false),
		item(13, catClothes, 3, false),
	}

	got := PlanMove(items, 10, catClothes, ItemTarget(13))
	want := []model.ItemPosition{
		{ID: 12, CategoryID: catClothes, SortOrder: 0},
		{ID: 13, CategoryID: catClothes, SortOrder: 1},
		{ID: 10, CategoryID: catClothes, SortOrder: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}

	if got := PlanMove(items, 11, catClothes, ItemTarget(10)); len(got) != 0 {
		t.Fatalf("dragging a checked item should be a no-op, got %v", got)
	}
}

func TestPlanMoveUnresolvableTarget(t *testing.T) {
	items := []model.Item{
		item(10, catClothes, 0, false),
	}
	if got := PlanMove(items, 10, catClothes, ItemTarget(999)); got != nil {
		t.Fatalf("expected nil batch for unknown target item, got %v", got)
	}
	if got := PlanMove(items, 999, catClothes, ItemTarget(10)); got != nil {
		t.Fatalf("expected nil batch for unknown dragged item, got %v", got)
	}
}

func TestPlanMoveDenseSequences(t *testing.T) {
	// After any plan, the per-category sort_orders are exactly {0..n-1}.
	items := []model.Item{
		item(10, catClothes, 3, false),
		item(11, catClothes, 7, false),
		item(12, catClothes, 9, false),
		item(20, catTech, 2, false),
		item(21, catTech, 5, false),
	}

	batch := PlanMove(items, 11, catClothes, ItemTarget(21))
	orders := map[int64][]int{}
	for _, pos := range batch {
		orders[pos.CategoryID] = append(orders[pos.CategoryID], pos.SortOrder)
	}
	for cat, seq := range orders {
		for i, o := range seq {
			if o != i {
				t.Fatalf("category %d: sequence not dense: %v", cat, seq)
			}
		}
	}
	if len(orders[catTech]) != 3 || len(orders[catClothes]) != 2 {
		t.Fatalf("unexpected batch shape: %v", batch)
	}
}

func TestProvisionalOrder(t *testing.T) {
	items := []model.Item{
		item(20, catTech, 0, false),
		item(21, catTech, 4, true), // checked items still occupy numbers here
		item(10, catClothes, 0, false),
	}
	if got := ProvisionalOrder(items, catTech, 10); got != 5 {
		t.Fatalf("ProvisionalOrder = %d, want 5", got)
	}
	if got := ProvisionalOrder(items, int64(99), 10); got != 0 {
		t.Fatalf("ProvisionalOrder empty category = %d, want 0", got)
	}
}

func TestDisplayCategories(t *testing.T) {
	cats := []model.Category{
		{ID: catClothes, Name: "Clothes", SortOrder: 0},
		{ID: catTech, Name: "Tech", SortOrder: 1},
		{ID: 3, Name: "Misc", SortOrder: 2},
	}
	items := []model.Item{
		item(20, catTech, 0, false),
		item(10, catClothes, 0, true), // checked only: Clothes counts as empty
	}

	got := DisplayCategories(cats, items)
	wantOrder := []int64{catTech, catClothes, 3}
	for i, c := range got {
		if c.ID != wantOrder[i] {
			t.Fatalf("display order = %v, want %v", ids(got), wantOrder)
		}
	}
}

func ids(cats []model.Category) []int64 {
	out := make([]int64, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.ID)
	}
	return out
}
