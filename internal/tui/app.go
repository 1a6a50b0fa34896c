package tui

import (
	"strings"

	"packlist/internal/client"

	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewHome view = iota
	viewList
)

// errMsg is any failed background call. Non-reorder failures surface on the
// status line; reorder failures never produce one (the drag controller
// resyncs silently).
type errMsg struct{ err error }

type appModel struct {
	api *client.Client

	width  int
	height int

	view view
	home homeModel
	list listModel

	statusErr string
}

func newAppModel(api *client.Client) appModel {
	return appModel{
		api:  api,
		view: viewHome,
		home: newHomeModel(api),
	}
}

func (m appModel) Init() tea.Cmd { return m.home.load() }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.home.setSize(msg.Width, msg.Height)
		m.list.setSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		if msg.err != nil {
			m.statusErr = msg.err.Error()
		}
		return m, nil

	case openListMsg:
		m.statusErr = ""
		m.view = viewList
		m.list = newListModel(m.api, msg.listID)
		m.list.setSize(m.width, m.height)
		return m, m.list.load()

	case backToHomeMsg:
		m.statusErr = ""
		m.view = viewHome
		return m, m.home.load()

	case tea.KeyMsg:
		// Any keystroke clears a stale error from the status line.
		m.statusErr = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case viewHome:
		m.home, cmd = m.home.update(msg)
	case viewList:
		m.list, cmd = m.list.update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	var body string
	switch m.view {
	case viewHome:
		body = m.home.view()
	case viewList:
		body = m.list.view()
	}
	if m.statusErr != "" {
		body += "\n" + styleError().Render(truncLine("! "+m.statusErr, m.width))
	}
	return body
}

func truncLine(s string, w int) string {
	if w <= 0 {
		return s
	}
	return cutANSI(strings.ReplaceAll(s, "\n", " "), w)
}
