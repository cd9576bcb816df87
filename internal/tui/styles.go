package tui

import "github.com/charmbracelet/lipgloss"

var (
	textFg   = lipgloss.Color("#E6E6E6")
	dimFg    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg = lipgloss.Color("#4393C3") // RdBu cool end
	markFg   = lipgloss.Color("#FFA500")
	frameCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(textFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frameCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dimFg)
	markStyle  = lipgloss.NewStyle().Foreground(markFg)
)

// bandStyle colors one band's braille runs and legend swatch.
func bandStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
