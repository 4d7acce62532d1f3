package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	postrender "github.com/glabrego/feedview-cli/internal/render/post"
	"github.com/glabrego/feedview-cli/internal/timeline"
	tuitheme "github.com/glabrego/feedview-cli/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type PostLineParams struct {
	Post         timeline.Post
	Now          time.Time
	RelativeTime bool
	Compact      bool
	Active       bool
	Width        int
}

// LinesPerPost is the number of screen rows one post occupies in the list.
func LinesPerPost(compact bool) int {
	if compact {
		return 1
	}
	return 2
}

func RenderPostLines(p PostLineParams, th tuitheme.Theme) []string {
	content := p.Post.Content()
	dateLabel := "[" + DateLabel(p.Now, content.CreatedAt, p.RelativeTime) + "]"

	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	prefix := fmt.Sprintf("  %s%s ", cursorMarker, th.LikeMarker(p.Post))
	author := th.StyleAuthor(p.Post, Handle(content.Author))

	if p.Compact {
		available := p.Width - visibleLen(prefix) - visibleLen(author) - 2 - visibleLen(dateLabel)
		summary := truncateRunes(postrender.Summary(p.Post), max(1, available))
		left := prefix + author + " " + th.PostText.Render(summary)
		return []string{th.RenderActiveLine(p.Active, alignRight(left, th.Timestamp.Render(dateLabel), p.Width))}
	}

	header := prefix + author
	if name := strings.TrimSpace(content.AuthorName); name != "" {
		available := p.Width - visibleLen(header) - 2 - visibleLen(dateLabel)
		if available > 3 {
			header += " " + th.AuthorName.Render(truncateRunes(name, available))
		}
	}
	if p.Post.IsReshare() && p.Post.Author != "" {
		via := "via " + Handle(p.Post.Author)
		if visibleLen(header)+1+utf8.RuneCountInString(via)+1+visibleLen(dateLabel) <= p.Width {
			header += " " + th.Reshare.Render(via)
		}
	}

	indent := strings.Repeat(" ", visibleLen(prefix))
	summary := truncateRunes(postrender.Summary(p.Post), max(1, p.Width-len(indent)))
	return []string{
		th.RenderActiveLine(p.Active, alignRight(header, th.Timestamp.Render(dateLabel), p.Width)),
		th.RenderActiveLine(p.Active, indent+th.PostText.Render(summary)),
	}
}

func Handle(author string) string {
	author = strings.TrimPrefix(strings.TrimSpace(author), "@")
	if author == "" {
		return "@unknown"
	}
	return "@" + author
}

func DateLabel(now, then time.Time, relative bool) string {
	if relative {
		return RelativeTimeLabel(now, then)
	}
	if then.IsZero() {
		return "unknown"
	}
	return then.UTC().Format("2006-01-02 15:04")
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) {
		return "just now"
	}
	d := now.Sub(then)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", n)
	}
	if d < 24*time.Hour {
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", n)
	}
	n := int(d / (24 * time.Hour))
	if n == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", n)
}

func alignRight(left, right string, width int) string {
	gap := width - visibleLen(left) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
