package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/feedview-cli/internal/timeline"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style
	GoToTop    lipgloss.Style

	Author     lipgloss.Style
	AuthorName lipgloss.Style
	Reshare    lipgloss.Style
	Liked      lipgloss.Style
	PostText   lipgloss.Style
	Timestamp  lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")
	cpBase := lipgloss.Color("#1e1e2e")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		GoToTop:    lipgloss.NewStyle().Bold(true).Foreground(cpBase).Background(cpTeal).Padding(0, 1),
		Author:     lipgloss.NewStyle().Bold(true).Foreground(cpLavender),
		AuthorName: lipgloss.NewStyle().Foreground(cpSubtext0),
		Reshare:    lipgloss.NewStyle().Italic(true).Foreground(cpTeal),
		Liked:      lipgloss.NewStyle().Foreground(cpRed),
		PostText:   lipgloss.NewStyle().Foreground(cpText),
		Timestamp:  lipgloss.NewStyle().Foreground(cpYellow).Faint(true),
	}
}

// StyleAuthor renders the handle of the displayed content, marking reshares.
func (t Theme) StyleAuthor(p timeline.Post, handle string) string {
	if handle == "" {
		return handle
	}
	if p.IsReshare() {
		return t.Reshare.Render("↻ ") + t.Author.Render(handle)
	}
	return t.Author.Render(handle)
}

func (t Theme) LikeMarker(p timeline.Post) string {
	if p.Content().Liked {
		return t.Liked.Render("♥")
	}
	return " "
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
