package view

import (
	"fmt"
	"strings"
	"time"

	postrender "github.com/glabrego/feedview-cli/internal/render/post"
	"github.com/glabrego/feedview-cli/internal/timeline"
)

type WrapFunc func(string, int) []string

func DetailMetaLines(p timeline.Post, width int, wrap WrapFunc) []string {
	content := p.Content()
	lines := make([]string, 0, 12)

	title := Handle(content.Author)
	if name := strings.TrimSpace(content.AuthorName); name != "" {
		title = name + " (" + title + ")"
	}
	lines = append(lines, wrap(title, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, len([]rune(title))))))
	lines = append(lines, "")

	if p.IsReshare() {
		lines = append(lines, wrap("Reshared by "+Handle(p.Author), width)...)
	}
	if !content.CreatedAt.IsZero() {
		lines = append(lines, "Date: "+content.CreatedAt.UTC().Format(time.RFC3339))
	}
	liked := "no"
	if content.Liked {
		liked = "yes"
	}
	lines = append(lines, fmt.Sprintf("Likes: %d | Reshares: %d | Liked: %s", content.LikeCount, content.ReshareCount, liked))
	if content.URL != "" {
		lines = append(lines, wrap("URL: "+content.URL, width)...)
	}
	return lines
}

func DetailLines(p timeline.Post, contentWidth, horizontalMargin int, wrap WrapFunc) []string {
	lines := DetailMetaLines(p, contentWidth, wrap)
	if body := postrender.ContentLines(p, contentWidth); len(body) > 0 {
		lines = append(lines, "")
		lines = append(lines, body...)
	}
	if links := postrender.Links(p); len(links) > 0 {
		lines = append(lines, "", "Links:")
		for _, link := range links {
			lines = append(lines, "  - "+link)
		}
	}
	return leftPadLines(lines, horizontalMargin)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		out[i] = prefix + line
	}
	return out
}
