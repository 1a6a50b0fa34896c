package tui

import (
	"packlist/internal/client"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive terminal client against a running server.
func Run(api *client.Client) error {
	applyColorProfilePreference()
	m := newAppModel(api)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
