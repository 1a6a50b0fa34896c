package drag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"packlist/internal/model"
	"packlist/internal/ordering"
)

type fakeBackend struct {
	reorderErr error
	getErr     error
	canonical  []model.Item

	reorders [][]model.ItemPosition
	reloads  int
}

func (f *fakeBackend) ReorderItems(_ context.Context, _ int64, items []model.ItemPosition) error {
	batch := make([]model.ItemPosition, len(items))
	copy(batch, items)
	f.reorders = append(f.reorders, batch)
	return f.reorderErr
}

func (f *fakeBackend) GetList(_ context.Context, listID int64) (model.List, error) {
	f.reloads++
	if f.getErr != nil {
		return model.List{}, f.getErr
	}
	return model.List{ID: listID, Items: f.canonical}, nil
}

var testCategories = []model.Category{
	{ID: 1, Name: "Clothes", SortOrder: 0},
	{ID: 2, Name: "Tech", SortOrder: 1},
}

func testItems() []model.Item {
	return []model.Item{
		{ID: 10, ListID: 1, CategoryID: 1, Text: "A", SortOrder: 0},
		{ID: 11, ListID: 1, CategoryID: 1, Text: "B", SortOrder: 1},
		{ID: 12, ListID: 1, CategoryID: 1, Text: "C", SortOrder: 2},
		{ID: 20, ListID: 1, CategoryID: 2, Text: "X", SortOrder: 0},
	}
}

func positionOf(t *testing.T, items []model.Item, id int64) (int64, int) {
	t.Helper()
	for _, it := range items {
		if it.ID == id {
			return it.CategoryID, it.SortOrder
		}
	}
	t.Fatalf("item %d missing", id)
	return 0, 0
}

func TestDropPersistsOptimistically(t *testing.T) {
	be := &fakeBackend{}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Drop(context.Background(), ordering.ItemTarget(12)); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if c.Phase() != Idle {
		t.Fatalf("phase = %v; want Idle", c.Phase())
	}

	items := c.Items()
	if cat, ord := positionOf(t, items, 10); cat != 1 || ord != 2 {
		t.Fatalf("dragged item at (%d,%d); want (1,2)", cat, ord)
	}
	if cat, ord := positionOf(t, items, 11); cat != 1 || ord != 0 {
		t.Fatalf("item B at (%d,%d); want (1,0)", cat, ord)
	}

	if len(be.reorders) != 1 {
		t.Fatalf("reorder calls = %d", len(be.reorders))
	}
	want := []model.ItemPosition{
		{ID: 11, CategoryID: 1, SortOrder: 0},
		{ID: 12, CategoryID: 1, SortOrder: 1},
		{ID: 10, CategoryID: 1, SortOrder: 2},
	}
	if diff := cmp.Diff(want, be.reorders[0]); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
	if be.reloads != 0 {
		t.Fatalf("unexpected resync")
	}
}

func TestDropFailureResyncsSilently(t *testing.T) {
	be := &fakeBackend{
		reorderErr: errors.New("boom"),
		canonical:  testItems(),
	}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// The persist fails, but Drop reports success after reloading canonical
	// state: reorder failures recover without surfacing.
	if err := c.Drop(context.Background(), ordering.ItemTarget(12)); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if be.reloads != 1 {
		t.Fatalf("reloads = %d; want 1", be.reloads)
	}
	if diff := cmp.Diff(testItems(), c.Items()); diff != "" {
		t.Fatalf("canonical state not restored (-want +got):\n%s", diff)
	}
	if c.Phase() != Idle {
		t.Fatalf("phase = %v; want Idle", c.Phase())
	}
}

func TestDropReloadFailurePropagates(t *testing.T) {
	be := &fakeBackend{
		reorderErr: errors.New("boom"),
		getErr:     errors.New("down"),
	}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Drop(context.Background(), ordering.ItemTarget(12)); err == nil {
		t.Fatalf("expected reload error")
	}
	if c.Phase() != Idle {
		t.Fatalf("phase = %v; want Idle", c.Phase())
	}
}

func TestHoverRelocatesProvisionally(t *testing.T) {
	be := &fakeBackend{}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.Hover(ordering.ItemTarget(20)) {
		t.Fatalf("hover over Tech item should relocate")
	}
	if cat, ord := positionOf(t, c.Items(), 10); cat != 2 || ord != 1 {
		t.Fatalf("provisional position (%d,%d); want (2,1)", cat, ord)
	}
	// Hovering the same category again changes nothing.
	if c.Hover(ordering.CategoryTarget(2)) {
		t.Fatalf("same-category hover must be a no-op")
	}

	// Drop onto the Tech container: source renumbering still uses the
	// category captured at start, not the provisional one.
	if err := c.Drop(context.Background(), ordering.CategoryTarget(2)); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if len(be.reorders) != 1 {
		t.Fatalf("reorder calls = %d", len(be.reorders))
	}
	var sawSourceRenumber bool
	for _, pos := range be.reorders[0] {
		if pos.ID == 11 && pos.CategoryID == 1 && pos.SortOrder == 0 {
			sawSourceRenumber = true
		}
	}
	if !sawSourceRenumber {
		t.Fatalf("source category not renumbered: %+v", be.reorders[0])
	}
}

func TestCancelReloads(t *testing.T) {
	be := &fakeBackend{canonical: testItems()}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Hover(ordering.CategoryTarget(2))
	if err := c.Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if be.reloads != 1 {
		t.Fatalf("reloads = %d; want 1", be.reloads)
	}
	if diff := cmp.Diff(testItems(), c.Items()); diff != "" {
		t.Fatalf("provisional state survived cancel (-want +got):\n%s", diff)
	}
	if be.reorders != nil {
		t.Fatalf("cancel must not persist anything")
	}
}

func TestSelfDropIsNoop(t *testing.T) {
	be := &fakeBackend{canonical: testItems()}
	c := NewController(be, 1)
	c.SetItems(testItems())

	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Dropping an item back onto its own position plans nothing; the
	// controller just reloads canonical state to shed any provisional edits.
	if err := c.Drop(context.Background(), ordering.ItemTarget(10)); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if be.reorders != nil {
		t.Fatalf("no-op drop must not persist")
	}
	if be.reloads != 1 {
		t.Fatalf("reloads = %d; want 1", be.reloads)
	}
	if c.Phase() != Idle {
		t.Fatalf("phase = %v; want Idle", c.Phase())
	}
}

func TestStartGuards(t *testing.T) {
	be := &fakeBackend{}
	c := NewController(be, 1)
	items := testItems()
	items[3].IsChecked = true
	c.SetItems(items)

	if err := c.Start(20, testCategories); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("checked item pickup: %v", err)
	}
	if err := c.Start(999, testCategories); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("unknown item pickup: %v", err)
	}
	if err := c.Start(10, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(11, testCategories); !errors.Is(err, ErrBusy) {
		t.Fatalf("second pickup: %v", err)
	}
}

func TestFrozenCategories(t *testing.T) {
	be := &fakeBackend{}
	c := NewController(be, 1)
	// Only Tech has unchecked items, so it sorts ahead of Clothes.
	c.SetItems([]model.Item{
		{ID: 10, CategoryID: 1, Text: "A", SortOrder: 0, IsChecked: true},
		{ID: 20, CategoryID: 2, Text: "X", SortOrder: 0},
	})

	if err := c.Start(20, testCategories); err != nil {
		t.Fatalf("Start: %v", err)
	}
	got := c.FrozenCategories()
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("frozen order = %+v", got)
	}
}

func TestUndoWindow(t *testing.T) {
	c := NewController(&fakeBackend{}, 1)
	now := time.Now()
	c.now = func() time.Time { return now }

	if _, ok := c.UndoCandidate(); ok {
		t.Fatalf("undo available before any check")
	}

	c.NoteChecked(10)
	if id, ok := c.UndoCandidate(); !ok || id != 10 {
		t.Fatalf("candidate = %d,%v", id, ok)
	}

	// A second check silently replaces the first.
	c.NoteChecked(11)
	if id, _ := c.UndoCandidate(); id != 11 {
		t.Fatalf("candidate = %d; want 11", id)
	}

	now = now.Add(UndoWindow + time.Second)
	if _, ok := c.UndoCandidate(); ok {
		t.Fatalf("undo window should have expired")
	}
	if _, ok := c.TakeUndo(); ok {
		t.Fatalf("expired undo consumed")
	}

	c.NoteChecked(12)
	if id, ok := c.TakeUndo(); !ok || id != 12 {
		t.Fatalf("TakeUndo = %d,%v", id, ok)
	}
	// Consumed: a second take yields nothing.
	if _, ok := c.TakeUndo(); ok {
		t.Fatalf("undo consumed twice")
	}
}
