// Package drag runs the move gesture: optimistic local reorder, async
// persistence, and silent resync when the server rejects the batch.
package drag

import (
	"context"
	"errors"
	"sync"
	"time"

	"packlist/internal/model"
	"packlist/internal/ordering"
)

// Backend persists reorder batches and reloads canonical state. The HTTP
// client satisfies it; tests use fakes.
type Backend interface {
	ReorderItems(ctx context.Context, listID int64, items []model.ItemPosition) error
	GetList(ctx context.Context, listID int64) (model.List, error)
}

type Phase int

const (
	Idle Phase = iota
	Dragging
	Persisting
	Resyncing
)

var (
	ErrBusy        = errors.New("drag: a gesture is already in flight")
	ErrNotDragging = errors.New("drag: no active gesture")
)

// UndoWindow is how long a just-checked item can be unchecked in one
// keystroke before the affordance expires.
const UndoWindow = 4 * time.Second

// Controller holds the local working copy of a list's items during a
// gesture. All exported methods are safe for concurrent use; persistence
// runs on the caller's goroutine.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	listID  int64

	phase     Phase
	items     []model.Item
	draggedID int64
	// sourceCategoryID is captured when the gesture starts. Hover moves the
	// dragged item across categories provisionally, so the item's current
	// category is not a reliable source by drop time.
	sourceCategoryID int64
	// frozenCategories snapshots display order for the whole gesture so
	// rows do not jump while the item crosses category borders.
	frozenCategories []model.Category

	now          func() time.Time
	undoItemID   int64
	undoDeadline time.Time
}

func NewController(backend Backend, listID int64) *Controller {
	return &Controller{
		backend: backend,
		listID:  listID,
		now:     time.Now,
	}
}

// SetItems replaces the working copy, e.g. after an external reload. Ignored
// mid-gesture; the gesture's own resync path owns the copy then.
func (c *Controller) SetItems(items []model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Idle {
		return
	}
	c.items = cloneItems(items)
}

func (c *Controller) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) DraggedID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draggedID
}

// Start picks an item up. Checked items are not draggable, and a new
// gesture is refused while a previous drop is still persisting.
func (c *Controller) Start(itemID int64, categories []model.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Idle {
		return ErrBusy
	}
	it := findItem(c.items, itemID)
	if it == nil || it.IsChecked.Bool() {
		return ErrNotDragging
	}
	c.phase = Dragging
	c.draggedID = itemID
	c.sourceCategoryID = it.CategoryID
	c.frozenCategories = ordering.DisplayCategories(categories, c.items)
	return nil
}

// Hover relocates the dragged item into the hovered category provisionally,
// appended after everything already there. Position inside the category is
// settled at drop. Reports whether the working copy changed.
func (c *Controller) Hover(target ordering.Target) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Dragging {
		return false
	}
	catID, ok := c.hoverCategory(target)
	if !ok {
		return false
	}
	it := findItem(c.items, c.draggedID)
	if it == nil || it.CategoryID == catID {
		return false
	}
	it.CategoryID = catID
	it.SortOrder = ordering.ProvisionalOrder(c.items, catID, c.draggedID)
	return true
}

func (c *Controller) hoverCategory(target ordering.Target) (int64, bool) {
	switch target.Kind {
	case ordering.TargetCategory:
		return target.ID, true
	case ordering.TargetItem:
		over := findItem(c.items, target.ID)
		if over == nil || over.ID == c.draggedID {
			return 0, false
		}
		return over.CategoryID, true
	}
	return 0, false
}

// FrozenCategories is the category display order captured at gesture start.
// Empty outside a gesture.
func (c *Controller) FrozenCategories() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Category, len(c.frozenCategories))
	copy(out, c.frozenCategories)
	return out
}

// Drop finishes the gesture: plan the move, apply it locally, persist the
// batch. A failed persist falls back to reloading canonical state without
// surfacing an error; only reload failures propagate.
func (c *Controller) Drop(ctx context.Context, target ordering.Target) error {
	c.mu.Lock()
	if c.phase != Dragging {
		c.mu.Unlock()
		return ErrNotDragging
	}
	plan := ordering.PlanMove(c.items, c.draggedID, c.sourceCategoryID, target)
	if len(plan) == 0 {
		// No-op drop. Hover may have relocated the item provisionally, so
		// the working copy still needs its canonical shape back.
		c.endGestureLocked()
		c.mu.Unlock()
		return c.resync(ctx)
	}
	applyPlan(c.items, plan)
	c.phase = Persisting
	listID := c.listID
	c.mu.Unlock()

	err := c.backend.ReorderItems(ctx, listID, plan)

	c.mu.Lock()
	c.draggedID = 0
	c.sourceCategoryID = 0
	c.frozenCategories = nil
	if err == nil {
		c.phase = Idle
		c.mu.Unlock()
		return nil
	}
	c.phase = Resyncing
	c.mu.Unlock()
	return c.resync(ctx)
}

// Cancel abandons the gesture and reloads canonical state, discarding any
// provisional hover relocation.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != Dragging {
		c.mu.Unlock()
		return ErrNotDragging
	}
	c.endGestureLocked()
	c.mu.Unlock()
	return c.resync(ctx)
}

func (c *Controller) endGestureLocked() {
	c.phase = Resyncing
	c.draggedID = 0
	c.sourceCategoryID = 0
	c.frozenCategories = nil
}

func (c *Controller) resync(ctx context.Context) error {
	l, err := c.backend.GetList(ctx, c.listID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = Idle
	if err != nil {
		return err
	}
	c.items = cloneItems(l.Items)
	return nil
}

// NoteChecked opens the undo window for a just-checked item. A second check
// replaces the first's window outright.
func (c *Controller) NoteChecked(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.undoItemID = itemID
	c.undoDeadline = c.now().Add(UndoWindow)
}

// UndoCandidate reports which item an undo would uncheck, if the window is
// still open.
func (c *Controller) UndoCandidate() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.undoItemID == 0 || c.now().After(c.undoDeadline) {
		return 0, false
	}
	return c.undoItemID, true
}

// TakeUndo consumes the pending undo. Returns false when the window has
// expired or nothing was checked.
func (c *Controller) TakeUndo() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.undoItemID
	ok := id != 0 && !c.now().After(c.undoDeadline)
	c.undoItemID = 0
	c.undoDeadline = time.Time{}
	if !ok {
		return 0, false
	}
	return id, true
}

func applyPlan(items []model.Item, plan []model.ItemPosition) {
	for _, pos := range plan {
		if it := findItem(items, pos.ID); it != nil {
			it.CategoryID = pos.CategoryID
			it.SortOrder = pos.SortOrder
		}
	}
}

func findItem(items []model.Item, id int64) *model.Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
