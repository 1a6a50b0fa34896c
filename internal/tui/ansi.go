package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// cutANSI trims a styled line to w cells and terminates styling so colors
// do not bleed into the next row.
func cutANSI(line string, w int) string {
	if xansi.StringWidth(line) <= w {
		return line
	}
	return xansi.Cut(line, 0, w) + "\x1b[0m"
}

// padLine renders a full-width row so selection backgrounds cover the line.
func padLine(line string, w int) string {
	lw := xansi.StringWidth(line)
	if lw < w {
		return line + strings.Repeat(" ", w-lw)
	}
	return cutANSI(line, w)
}

// renderInputLine keeps text inputs on a single visual line. A view with a
// stray newline triggers wrapping that reads as phantom line insertion
// while typing.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInput),
	)
	return cutANSI(line, bodyW)
}
