package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// These colors are from the gruvbox vim theme
// https://github.com/morhetz/gruvbox
var red = lipgloss.Color("#cc241d")
var green = lipgloss.Color("#98971a")
var yellow = lipgloss.Color("#d79921")
var blue = lipgloss.Color("#458588")

var headerStyle = lipgloss.NewStyle().
	Foreground(blue).
	Bold(true)

var passStyle = lipgloss.NewStyle().
	Foreground(green)

var failStyle = lipgloss.NewStyle().
	Foreground(red).
	Bold(true)

var capStyle = lipgloss.NewStyle().
	Foreground(yellow)

var cellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// ColorEnabled reports whether f is a terminal that should get colored output.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// paint applies s only when color is on.
func paint(color bool, s lipgloss.Style, text string) string {
	if !color {
		return text
	}
	return s.Render(text)
}
