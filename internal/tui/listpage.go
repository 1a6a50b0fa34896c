package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"packlist/internal/client"
	"packlist/internal/drag"
	"packlist/internal/model"
	"packlist/internal/ordering"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// suggestDebounce matches the autocomplete's feel: fire only after typing
// pauses, cancel the in-flight request when the input changes again.
const suggestDebounce = 200 * time.Millisecond

type listLoadedMsg struct {
	list       model.List
	categories []model.Category
}

// listDirtyMsg follows any item/list mutation; it triggers a reload.
type listDirtyMsg struct{}

type dropDoneMsg struct{ err error }

type checkDoneMsg struct{ itemID int64 }

type undoTickMsg struct{}

type suggestTickMsg struct{ seq int }

type suggestResultMsg struct {
	seq         int
	suggestions []model.Suggestion
}

type listRowKind int

const (
	listRowCategory listRowKind = iota
	listRowItem
	listRowEmptyCategory
	listRowPackedHeader
	listRowPackedCategory
	listRowPackedItem
)

type listRow struct {
	kind     listRowKind
	category model.Category
	item     model.Item
}

type listMode int

const (
	listBrowse listMode = iota
	listMove
	listAddItem
	listRename
	listAddCategory
)

type listModel struct {
	api    *client.Client
	listID int64

	width  int
	height int

	list       model.List
	categories []model.Category
	ctrl       *drag.Controller

	rows   []listRow
	cursor int

	mode  listMode
	input textinput.Model

	// Add-item state: the picked category and live suggestions.
	pickedCategory int
	suggestions    []model.Suggestion
	suggestIndex   int
	suggestSeq     int
	suggestCancel  context.CancelFunc
}

func newListModel(api *client.Client, listID int64) listModel {
	ti := textinput.New()
	ti.CharLimit = 200
	return listModel{
		api:    api,
		listID: listID,
		ctrl:   drag.NewController(api, listID),
		input:  ti,
	}
}

func (m *listModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m listModel) load() tea.Cmd {
	api, id := m.api, m.listID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l, err := api.GetList(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		cats, err := api.Categories(ctx)
		if err != nil {
			return errMsg{err}
		}
		return listLoadedMsg{list: l, categories: cats}
	}
}

func (m listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		m.list = msg.list
		m.categories = msg.categories
		m.ctrl.SetItems(msg.list.Items)
		m.rebuildRows()
		m.clampCursor()
		return m, nil

	case listDirtyMsg:
		return m, m.load()

	case dropDoneMsg:
		m.rebuildRows()
		m.clampCursor()
		if msg.err != nil {
			return m, func() tea.Msg { return errMsg{msg.err} }
		}
		return m, nil

	case checkDoneMsg:
		m.ctrl.NoteChecked(msg.itemID)
		return m, tea.Batch(m.load(), tea.Tick(drag.UndoWindow, func(time.Time) tea.Msg {
			return undoTickMsg{}
		}))

	case undoTickMsg:
		// Re-render so an expired undo toast disappears.
		return m, nil

	case suggestTickMsg:
		if msg.seq != m.suggestSeq || m.mode != listAddItem {
			return m, nil
		}
		return m, m.fetchSuggestions(msg.seq, m.input.Value())

	case suggestResultMsg:
		if msg.seq != m.suggestSeq || m.mode != listAddItem {
			return m, nil
		}
		m.suggestions = msg.suggestions
		m.suggestIndex = -1
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case listMove:
			return m.updateMove(msg)
		case listAddItem:
			return m.updateAddItem(msg)
		case listRename, listAddCategory:
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

// -- browse

func (m listModel) updateBrowse(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, func() tea.Msg { return backToHomeMsg{} }
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case " ":
		if row, ok := m.itemUnderCursor(); ok {
			return m, m.toggleChecked(row.item)
		}
	case "u":
		if id, ok := m.ctrl.TakeUndo(); ok {
			return m, m.setChecked(id, false, false)
		}
	case "m":
		if row, ok := m.itemUnderCursor(); ok && row.kind == listRowItem {
			if err := m.ctrl.Start(row.item.ID, m.categories); err != nil {
				return m, nil
			}
			m.mode = listMove
			m.rebuildRows()
		}
	case "x":
		if row, ok := m.itemUnderCursor(); ok {
			return m, m.deleteItem(row.item.ID)
		}
	case "a":
		m.mode = listAddItem
		m.pickedCategory = m.categoryIndexUnderCursor()
		m.suggestions = nil
		m.suggestIndex = -1
		m.input.Placeholder = "Add item"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "R":
		m.mode = listRename
		m.input.Placeholder = "List name"
		m.input.SetValue(m.list.Name)
		m.input.Focus()
		return m, textinput.Blink
	case "C":
		m.mode = listAddCategory
		m.input.Placeholder = "Category name"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.load()
	}
	return m, nil
}

// -- move gesture

func (m listModel) updateMove(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = listBrowse
		ctrl := m.ctrl
		return m, func() tea.Msg { return dropDoneMsg{err: ctrl.Cancel(context.Background())} }
	case "up", "k":
		m.moveCursorAnyRow(-1)
		m.hoverUnderCursor()
		m.rebuildRows()
	case "down", "j":
		m.moveCursorAnyRow(1)
		m.hoverUnderCursor()
		m.rebuildRows()
	case "enter", " ":
		target, ok := m.targetUnderCursor()
		if !ok {
			return m, nil
		}
		m.mode = listBrowse
		ctrl := m.ctrl
		return m, func() tea.Msg { return dropDoneMsg{err: ctrl.Drop(context.Background(), target)} }
	}
	return m, nil
}

func (m *listModel) hoverUnderCursor() {
	if target, ok := m.targetUnderCursor(); ok {
		m.ctrl.Hover(target)
	}
}

func (m listModel) targetUnderCursor() (ordering.Target, bool) {
	if m.cursor >= len(m.rows) {
		return ordering.Target{}, false
	}
	switch row := m.rows[m.cursor]; row.kind {
	case listRowItem:
		return ordering.ItemTarget(row.item.ID), true
	case listRowCategory, listRowEmptyCategory:
		return ordering.CategoryTarget(row.category.ID), true
	}
	return ordering.Target{}, false
}

// -- add item + suggestions

func (m listModel) updateAddItem(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "left":
		m.pickedCategory = (m.pickedCategory + len(m.categories) - 1) % max1(len(m.categories))
		return m, nil
	case "right":
		m.pickedCategory = (m.pickedCategory + 1) % max1(len(m.categories))
		return m, nil
	case "up", "ctrl+p":
		if len(m.suggestions) > 0 && m.suggestIndex > -1 {
			m.suggestIndex--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.suggestIndex < len(m.suggestions)-1 {
			m.suggestIndex++
		}
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		categoryID := m.pickedCategoryID()
		if m.suggestIndex >= 0 && m.suggestIndex < len(m.suggestions) {
			s := m.suggestions[m.suggestIndex]
			text = s.Text
			categoryID = s.CategoryID
		}
		if text == "" || categoryID == 0 {
			return m, nil
		}
		// Keep the input open so several items can be added in a row.
		m.input.SetValue("")
		m.suggestions = nil
		m.suggestIndex = -1
		m.suggestSeq++
		return m, m.createItem(text, categoryID)
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.suggestSeq++
		seq := m.suggestSeq
		if len(strings.TrimSpace(m.input.Value())) < 2 {
			m.suggestions = nil
			m.suggestIndex = -1
			return m, cmd
		}
		tick := tea.Tick(suggestDebounce, func(time.Time) tea.Msg {
			return suggestTickMsg{seq: seq}
		})
		return m, tea.Batch(cmd, tick)
	}
	return m, cmd
}

func (m *listModel) fetchSuggestions(seq int, q string) tea.Cmd {
	if m.suggestCancel != nil {
		m.suggestCancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	m.suggestCancel = cancel
	api, listID := m.api, m.listID
	return func() tea.Msg {
		defer cancel()
		suggestions, err := api.Suggestions(ctx, q, listID)
		if err != nil {
			// Stale or failed lookups just leave the dropdown as-is.
			return nil
		}
		return suggestResultMsg{seq: seq, suggestions: suggestions}
	}
}

// -- rename / add category

func (m listModel) updateInput(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		if value == "" {
			return m, nil
		}
		if mode == listRename {
			return m, m.renameList(value)
		}
		return m, m.addCategory(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *listModel) closeInput() {
	m.mode = listBrowse
	m.input.Blur()
	m.suggestions = nil
	m.suggestIndex = -1
	m.suggestSeq++
	if m.suggestCancel != nil {
		m.suggestCancel()
		m.suggestCancel = nil
	}
}

// -- commands

func (m listModel) toggleChecked(it model.Item) tea.Cmd {
	return m.setChecked(it.ID, !it.IsChecked.Bool(), !it.IsChecked.Bool())
}

// setChecked flips is_checked; openUndo marks the gesture as undoable.
func (m listModel) setChecked(itemID int64, checked, openUndo bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		flag := model.Flag(checked)
		if _, err := api.UpdateItem(ctx, itemID, client.ItemPatch{IsChecked: &flag}); err != nil {
			return errMsg{err}
		}
		if openUndo {
			return checkDoneMsg{itemID: itemID}
		}
		return listDirtyMsg{}
	}
}

func (m listModel) createItem(text string, categoryID int64) tea.Cmd {
	api, listID := m.api, m.listID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := api.CreateItem(ctx, listID, text, categoryID); err != nil {
			return errMsg{err}
		}
		return listDirtyMsg{}
	}
}

func (m listModel) deleteItem(itemID int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.DeleteItem(ctx, itemID); err != nil {
			return errMsg{err}
		}
		return listDirtyMsg{}
	}
}

func (m listModel) renameList(name string) tea.Cmd {
	api, listID := m.api, m.listID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := api.UpdateList(ctx, listID, client.ListPatch{Name: &name}); err != nil {
			return errMsg{err}
		}
		return listDirtyMsg{}
	}
}

func (m listModel) addCategory(name string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := api.CreateCategory(ctx, name); err != nil {
			return errMsg{err}
		}
		return listDirtyMsg{}
	}
}

// -- rows

// rebuildRows flattens the working copy into render rows: per-category
// unchecked sections first, then the packed section. During a gesture the
// category order comes from the controller's frozen snapshot.
func (m *listModel) rebuildRows() {
	items := m.ctrl.Items()
	cats := m.categories
	if m.ctrl.Phase() == drag.Dragging {
		if frozen := m.ctrl.FrozenCategories(); len(frozen) > 0 {
			cats = frozen
		}
	} else {
		cats = ordering.DisplayCategories(m.categories, items)
	}
	m.rows = buildListRows(cats, items)
}

func buildListRows(categories []model.Category, items []model.Item) []listRow {
	byCategory := map[int64][]model.Item{}
	var packed []model.Item
	for _, it := range items {
		if it.IsChecked.Bool() {
			packed = append(packed, it)
			continue
		}
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}
	for id := range byCategory {
		seq := byCategory[id]
		sort.SliceStable(seq, func(i, j int) bool { return seq[i].SortOrder < seq[j].SortOrder })
		byCategory[id] = seq
	}

	var rows []listRow
	for _, c := range categories {
		seq := byCategory[c.ID]
		if len(seq) == 0 {
			rows = append(rows, listRow{kind: listRowEmptyCategory, category: c})
			continue
		}
		rows = append(rows, listRow{kind: listRowCategory, category: c})
		for _, it := range seq {
			rows = append(rows, listRow{kind: listRowItem, category: c, item: it})
		}
	}
	if len(packed) > 0 {
		// Packed items keep their category grouping, sub-headed per
		// category in category order.
		packedByCategory := map[int64][]model.Item{}
		for _, it := range packed {
			packedByCategory[it.CategoryID] = append(packedByCategory[it.CategoryID], it)
		}
		rows = append(rows, listRow{kind: listRowPackedHeader})
		for _, c := range categories {
			seq := packedByCategory[c.ID]
			if len(seq) == 0 {
				continue
			}
			sort.SliceStable(seq, func(i, j int) bool { return seq[i].SortOrder < seq[j].SortOrder })
			rows = append(rows, listRow{kind: listRowPackedCategory, category: c})
			for _, it := range seq {
				rows = append(rows, listRow{kind: listRowPackedItem, category: c, item: it})
			}
		}
	}
	return rows
}

// -- cursor

func (m *listModel) moveCursor(delta int) {
	i := m.cursor
	for {
		i += delta
		if i < 0 || i >= len(m.rows) {
			return
		}
		if k := m.rows[i].kind; k == listRowItem || k == listRowPackedItem {
			m.cursor = i
			return
		}
	}
}

// moveCursorAnyRow also stops on category rows, which are hover targets
// during a move gesture.
func (m *listModel) moveCursorAnyRow(delta int) {
	i := m.cursor
	for {
		i += delta
		if i < 0 || i >= len(m.rows) {
			return
		}
		switch m.rows[i].kind {
		case listRowItem, listRowCategory, listRowEmptyCategory:
			m.cursor = i
			return
		case listRowPackedHeader, listRowPackedCategory, listRowPackedItem:
			// The packed section is not a drop target.
			return
		}
	}
}

func (m *listModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m listModel) itemUnderCursor() (listRow, bool) {
	if m.cursor < len(m.rows) {
		if k := m.rows[m.cursor].kind; k == listRowItem || k == listRowPackedItem {
			return m.rows[m.cursor], true
		}
	}
	return listRow{}, false
}

// categoryIndexUnderCursor picks the default category for a new item: the
// one the cursor sits in, else the first.
func (m listModel) categoryIndexUnderCursor() int {
	if m.cursor < len(m.rows) {
		row := m.rows[m.cursor]
		if row.kind == listRowItem || row.kind == listRowCategory || row.kind == listRowEmptyCategory {
			for i, c := range m.categories {
				if c.ID == row.category.ID {
					return i
				}
			}
		}
	}
	return 0
}

func (m listModel) pickedCategoryID() int64 {
	if m.pickedCategory >= 0 && m.pickedCategory < len(m.categories) {
		return m.categories[m.pickedCategory].ID
	}
	return 0
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// -- view

func (m listModel) view() string {
	var b strings.Builder

	total, checked := 0, 0
	for _, it := range m.ctrl.Items() {
		total++
		if it.IsChecked.Bool() {
			checked++
		}
	}
	b.WriteString(styleHeader().Render(m.list.Name))
	b.WriteString("  ")
	b.WriteString(styleMuted().Render(fmt.Sprintf("%d/%d packed", checked, total)))
	b.WriteString("\n\n")

	draggedID := m.ctrl.DraggedID()
	for i, row := range m.rows {
		b.WriteString(m.renderRow(row, i == m.cursor, draggedID))
		b.WriteString("\n")
	}

	if id, ok := m.ctrl.UndoCandidate(); ok {
		b.WriteString("\n")
		b.WriteString(styleToast().Render(fmt.Sprintf("Packed %s  (u: undo)", m.itemText(id))))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m listModel) renderRow(row listRow, selected bool, draggedID int64) string {
	switch row.kind {
	case listRowCategory, listRowEmptyCategory:
		line := styleCategory().Render(row.category.Name)
		if selected && m.mode == listMove {
			return styleSelected().Render(padLine(row.category.Name, m.bodyWidth()))
		}
		return line
	case listRowPackedHeader:
		return styleCategory().Render("Packed")
	case listRowPackedCategory:
		return styleChecked().Render("  " + row.category.Name)
	case listRowItem:
		line := "  [ ] " + row.item.Text
		switch {
		case row.item.ID == draggedID:
			return styleDragged().Render(padLine(line, m.bodyWidth()))
		case selected:
			return styleSelected().Render(padLine(line, m.bodyWidth()))
		}
		return line
	case listRowPackedItem:
		line := "  [x] " + row.item.Text
		if selected {
			return styleSelected().Render(padLine(line, m.bodyWidth()))
		}
		return styleChecked().Render(line)
	}
	return ""
}

func (m listModel) renderFooter() string {
	switch m.mode {
	case listMove:
		return styleMuted().Render("j/k: move  enter/space: drop  esc: cancel")
	case listAddItem:
		var b strings.Builder
		b.WriteString(renderInputLine(m.bodyWidth(), m.input.View()))
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("category: ") + styleCategory().Render(m.pickedCategoryName()) + styleMuted().Render("  (left/right to change)"))
		for i, s := range m.suggestions {
			b.WriteString("\n")
			line := fmt.Sprintf("  %s  %s", s.Text, styleMuted().Render(s.CategoryName))
			if i == m.suggestIndex {
				line = styleSelected().Render(padLine(line, m.bodyWidth()))
			}
			b.WriteString(line)
		}
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("enter: add  up/down: pick suggestion  esc: done"))
		return b.String()
	case listRename, listAddCategory:
		return renderInputLine(m.bodyWidth(), m.input.View()) + "\n" +
			styleMuted().Render("enter: save  esc: cancel")
	}
	return styleMuted().Render("space: pack  m: move  a: add  x: delete  R: rename  C: new category  esc: back")
}

func (m listModel) pickedCategoryName() string {
	if m.pickedCategory >= 0 && m.pickedCategory < len(m.categories) {
		return m.categories[m.pickedCategory].Name
	}
	return "-"
}

func (m listModel) itemText(id int64) string {
	for _, it := range m.ctrl.Items() {
		if it.ID == id {
			return it.Text
		}
	}
	return "item"
}

func (m listModel) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
