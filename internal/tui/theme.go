package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers.
//
// The TUI must stay readable on light and dark terminal backgrounds, so
// every color is a lipgloss.AdaptiveColor and "faint" styling is reserved
// for dark backgrounds (faint text on light terminals often disappears).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62") // blue
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorDanger     lipgloss.TerminalColor = ac("160", "203")
	colorOK         lipgloss.TerminalColor = ac("28", "78")
	colorChecked    lipgloss.TerminalColor = ac("245", "240")
	// The picked-up row during a move gesture.
	colorDragBg lipgloss.TerminalColor = ac("153", "24")
	colorInput  lipgloss.TerminalColor = ac("254", "234")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func styleCategory() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg)
}

func styleDragged() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorDragBg).Bold(true)
}

func styleChecked() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorChecked).Strikethrough(true)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger)
}

func styleToast() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorOK)
}

// applyColorProfilePreference honors NO_COLOR and otherwise follows the
// terminal's capabilities. CLICOLOR handling is skipped on purpose: it is
// meant for non-interactive output and tends to strip a TUI bare.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}
