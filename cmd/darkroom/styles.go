package main

import "github.com/charmbracelet/lipgloss"

var (
	colorInk     = lipgloss.Color("#E8E6E3")
	colorDim     = lipgloss.Color("#7A8291")
	colorAccent  = lipgloss.Color("#F0A500")
	colorSuccess = lipgloss.Color("#A3BE8C")
	colorError   = lipgloss.Color("#BF616A")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle   = lipgloss.NewStyle().Foreground(colorInk)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)
)

// field renders one "label value" line.
func field(label, value string) string {
	return "  " + labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
