package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"packlist/internal/client"
	"packlist/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type openListMsg struct{ listID int64 }
type backToHomeMsg struct{}

type homeLoadedMsg struct {
	summaries []model.ListSummary
	archived  bool
}

// homeActionDoneMsg follows any mutation on the home page; it triggers a
// reload so counts and ordering stay canonical.
type homeActionDoneMsg struct{}

type homeRowKind int

const (
	homeRowHeader homeRowKind = iota
	homeRowList
	homeRowEmpty
)

type homeRow struct {
	kind    homeRowKind
	label   string
	summary model.ListSummary
}

type homeMode int

const (
	homeBrowse homeMode = iota
	homeNewList
	homeConfirmDelete
)

type homeModel struct {
	api *client.Client

	width  int
	height int

	showArchived bool
	rows         []homeRow
	cursor       int

	mode      homeMode
	nameInput textinput.Model
	// New-list modal: templates available for merging, checkbox state, and
	// which field the modal cursor sits on (0 = name, 1..n = templates).
	templates   []model.ListSummary
	tplSelected map[int64]bool
	field       int

	deleteTarget model.ListSummary
}

func newHomeModel(api *client.Client) homeModel {
	ti := textinput.New()
	ti.Placeholder = "List name"
	ti.CharLimit = 120
	return homeModel{api: api, nameInput: ti}
}

func (m *homeModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m homeModel) load() tea.Cmd {
	api, archived := m.api, m.showArchived
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		summaries, err := api.Lists(ctx, archived)
		if err != nil {
			return errMsg{err}
		}
		return homeLoadedMsg{summaries: summaries, archived: archived}
	}
}

func (m homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case homeLoadedMsg:
		if msg.archived != m.showArchived {
			return m, nil
		}
		m.rows = buildHomeRows(msg.summaries, msg.archived)
		m.templates = nil
		for _, s := range msg.summaries {
			if s.IsTemplate.Bool() {
				m.templates = append(m.templates, s)
			}
		}
		m.clampCursor()
		return m, nil

	case homeActionDoneMsg:
		return m, m.load()

	case tea.KeyMsg:
		switch m.mode {
		case homeNewList:
			return m.updateNewList(msg)
		case homeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m homeModel) updateBrowse(msg tea.KeyMsg) (homeModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		if s, ok := m.selected(); ok {
			return m, func() tea.Msg { return openListMsg{listID: s.ID} }
		}
	case "n":
		m.mode = homeNewList
		m.field = 0
		m.tplSelected = map[int64]bool{}
		m.nameInput.SetValue("")
		m.nameInput.Focus()
		return m, textinput.Blink
	case "d":
		if s, ok := m.selected(); ok {
			return m, m.duplicate(s.ID)
		}
	case "a":
		if s, ok := m.selected(); ok {
			return m, m.setArchived(s.ID, !s.IsArchived.Bool())
		}
	case "x":
		if s, ok := m.selected(); ok {
			m.mode = homeConfirmDelete
			m.deleteTarget = s
		}
	case "v":
		m.showArchived = !m.showArchived
		m.cursor = 0
		return m, m.load()
	case "r":
		return m, m.load()
	}
	return m, nil
}

func (m homeModel) updateNewList(msg tea.KeyMsg) (homeModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = homeBrowse
		m.nameInput.Blur()
		return m, nil
	case "tab", "down":
		m.field++
		if m.field > len(m.templates) {
			m.field = 0
		}
		m.syncModalFocus()
		return m, nil
	case "shift+tab", "up":
		m.field--
		if m.field < 0 {
			m.field = len(m.templates)
		}
		m.syncModalFocus()
		return m, nil
	case " ":
		if m.field > 0 {
			tpl := m.templates[m.field-1]
			m.tplSelected[tpl.ID] = !m.tplSelected[tpl.ID]
			return m, nil
		}
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m, nil
		}
		var ids []int64
		for _, tpl := range m.templates {
			if m.tplSelected[tpl.ID] {
				ids = append(ids, tpl.ID)
			}
		}
		m.mode = homeBrowse
		m.nameInput.Blur()
		return m, m.create(name, ids)
	}
	if m.field == 0 {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *homeModel) syncModalFocus() {
	if m.field == 0 {
		m.nameInput.Focus()
	} else {
		m.nameInput.Blur()
	}
}

func (m homeModel) updateConfirmDelete(msg tea.KeyMsg) (homeModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.deleteTarget.ID
		m.mode = homeBrowse
		return m, m.delete(id)
	case "n", "esc":
		m.mode = homeBrowse
	}
	return m, nil
}

// -- commands

func (m homeModel) create(name string, templateIDs []int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var (
			l   model.List
			err error
		)
		if len(templateIDs) > 0 {
			l, err = api.CreateFromTemplates(ctx, name, templateIDs)
		} else {
			l, err = api.CreateList(ctx, name, false)
		}
		if err != nil {
			return errMsg{err}
		}
		return openListMsg{listID: l.ID}
	}
}

func (m homeModel) duplicate(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := api.DuplicateList(ctx, id, "", false); err != nil {
			return errMsg{err}
		}
		return homeActionDoneMsg{}
	}
}

func (m homeModel) setArchived(id int64, archived bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		flag := model.Flag(archived)
		if _, err := api.UpdateList(ctx, id, client.ListPatch{IsArchived: &flag}); err != nil {
			return errMsg{err}
		}
		return homeActionDoneMsg{}
	}
}

func (m homeModel) delete(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.DeleteList(ctx, id); err != nil {
			return errMsg{err}
		}
		return homeActionDoneMsg{}
	}
}

// -- cursor

func (m *homeModel) moveCursor(delta int) {
	i := m.cursor
	for {
		i += delta
		if i < 0 || i >= len(m.rows) {
			return
		}
		if m.rows[i].kind == homeRowList {
			m.cursor = i
			return
		}
	}
}

func (m *homeModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.rows) > 0 && m.rows[m.cursor].kind != homeRowList {
		m.cursor = 0
		m.moveCursor(1)
		// A view with no selectable rows leaves the cursor on row 0.
		if m.rows[m.cursor].kind != homeRowList {
			m.cursor = 0
		}
	}
}

func (m homeModel) selected() (model.ListSummary, bool) {
	if m.cursor < len(m.rows) && m.rows[m.cursor].kind == homeRowList {
		return m.rows[m.cursor].summary, true
	}
	return model.ListSummary{}, false
}

// buildHomeRows flattens the fetched summaries into renderable sections:
// plain lists first, templates after. The archived view is one flat section.
func buildHomeRows(summaries []model.ListSummary, archived bool) []homeRow {
	if archived {
		rows := []homeRow{{kind: homeRowHeader, label: "Archived"}}
		if len(summaries) == 0 {
			return append(rows, homeRow{kind: homeRowEmpty, label: "Nothing archived."})
		}
		for _, s := range summaries {
			rows = append(rows, homeRow{kind: homeRowList, summary: s})
		}
		return rows
	}

	var lists, templates []model.ListSummary
	for _, s := range summaries {
		if s.IsTemplate.Bool() {
			templates = append(templates, s)
		} else {
			lists = append(lists, s)
		}
	}
	rows := []homeRow{{kind: homeRowHeader, label: "My Lists"}}
	if len(lists) == 0 {
		rows = append(rows, homeRow{kind: homeRowEmpty, label: "No lists yet. Press n to create one."})
	}
	for _, s := range lists {
		rows = append(rows, homeRow{kind: homeRowList, summary: s})
	}
	rows = append(rows, homeRow{kind: homeRowHeader, label: "Templates"})
	if len(templates) == 0 {
		rows = append(rows, homeRow{kind: homeRowEmpty, label: "No templates."})
	}
	for _, s := range templates {
		rows = append(rows, homeRow{kind: homeRowList, summary: s})
	}
	return rows
}

// -- view

func (m homeModel) view() string {
	switch m.mode {
	case homeNewList:
		return m.viewNewListModal()
	case homeConfirmDelete:
		return m.viewConfirmDelete()
	}

	var b strings.Builder
	b.WriteString(styleHeader().Render("Packlist"))
	b.WriteString("\n\n")
	now := time.Now().UTC()
	for i, row := range m.rows {
		switch row.kind {
		case homeRowHeader:
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styleCategory().Render(row.label))
		case homeRowEmpty:
			b.WriteString(styleMuted().Render("  " + row.label))
		case homeRowList:
			b.WriteString(m.renderListRow(row.summary, i == m.cursor, now))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	help := "enter: open  n: new  d: duplicate  a: archive  x: delete  v: archived  q: quit"
	if m.showArchived {
		help = "enter: open  a: unarchive  x: delete  v: back to lists  q: quit"
	}
	b.WriteString(styleMuted().Render(help))
	return b.String()
}

func (m homeModel) renderListRow(s model.ListSummary, selected bool, now time.Time) string {
	counts := fmt.Sprintf("%d/%d packed", s.CheckedItems, s.TotalItems)
	line := fmt.Sprintf("  %s  %s  %s", s.Name, styleMuted().Render(counts), styleMuted().Render(relTime(s.UpdatedAt, now)))
	if selected {
		return styleSelected().Render(padLine(line, m.bodyWidth()))
	}
	return line
}

func (m homeModel) viewNewListModal() string {
	var b strings.Builder
	b.WriteString(styleHeader().Render("New list"))
	b.WriteString("\n\n")
	b.WriteString(renderInputLine(m.bodyWidth(), m.nameInput.View()))
	b.WriteString("\n")
	if len(m.templates) > 0 {
		b.WriteString("\n")
		b.WriteString(styleCategory().Render("Start from templates"))
		b.WriteString("\n")
		for i, tpl := range m.templates {
			mark := "[ ]"
			if m.tplSelected[tpl.ID] {
				mark = "[x]"
			}
			line := fmt.Sprintf("  %s %s", mark, tpl.Name)
			if m.field == i+1 {
				line = styleSelected().Render(padLine(line, m.bodyWidth()))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("enter: create  space: toggle template  tab: next field  esc: cancel"))
	return b.String()
}

func (m homeModel) viewConfirmDelete() string {
	var b strings.Builder
	b.WriteString(styleHeader().Render("Delete list"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete %q and all its items?", m.deleteTarget.Name))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("y: delete  n/esc: keep"))
	return b.String()
}

func (m homeModel) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
