package post

import "github.com/charmbracelet/lipgloss"

var (
	cpBlue     = lipgloss.Color("#89b4fa")
	cpOverlay1 = lipgloss.Color("#7f849c")
	cpSubtext0 = lipgloss.Color("#a6adc8")

	linkStyle    = lipgloss.NewStyle().Foreground(cpBlue).Faint(true)
	mentionStyle = lipgloss.NewStyle().Foreground(cpBlue)
	quotePrefix  = lipgloss.NewStyle().Foreground(cpOverlay1).Render("│ ")
	quoteText    = lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0)
)
