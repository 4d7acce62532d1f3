package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/feedview-cli/internal/timeline"
	tuitheme "github.com/glabrego/feedview-cli/internal/tui/theme"
)

func Toolbar(inDetail bool) string {
	if inDetail {
		return "j/k scroll | [ ] prev/next | o open | y copy | l like | esc back | ? help"
	}
	return "j/k move | enter open | r refresh | n older | g top | l like | c compact | d time | ? help | q quit"
}

type FooterInput struct {
	Mode      string
	Shown     int
	Cursor    timeline.Cursor
	LastMerge string
	Exhausted bool
}

func CompactFooter(in FooterInput, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("mode") + " " + th.MetaValue.Render(in.Mode),
		th.MetaValue.Render(fmt.Sprintf("%d posts", in.Shown)),
	}
	if !in.Cursor.IsZero() {
		parts = append(parts, th.MetaLabel.Render("cursor")+" "+th.MetaValue.Render(in.Cursor.String()))
	}
	if in.LastMerge != "" {
		parts = append(parts, th.MetaLabel.Render("last")+" "+th.MetaValue.Render(in.LastMerge))
	}
	if in.Exhausted {
		parts = append(parts, th.MetaValue.Render("end of timeline"))
	}
	return strings.Join(parts, " • ")
}

func CompactMessage(loading bool, hasWarning bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}

// GoToTopHint is drawn above the list when the viewport has scrolled away
// from the newest posts.
func GoToTopHint(width int, th tuitheme.Theme) string {
	label := th.GoToTop.Render("↑ g: go to top")
	pad := (width - visibleLen(label)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + label
}

func HelpLines() []string {
	return []string{
		"Navigation:",
		"  j/k or arrows move, pgup/pgdown jump a page",
		"  g or t jumps to the newest post",
		"Timeline:",
		"  r fetches newer posts, n fetches older posts",
		"  older posts also load when the last post scrolls into view",
		"Post:",
		"  enter opens the post, o opens it in the browser, y copies its URL",
		"  l likes or unlikes the post",
		"Display:",
		"  c toggles compact rows, d toggles relative time",
		"Session:",
		"  ctrl+z suspends and q quits; both save the timeline for next time",
	}
}
