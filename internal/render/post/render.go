package post

import (
	"regexp"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"

	"github.com/glabrego/feedview-cli/internal/timeline"
)

var (
	reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	reHTTPURL   = regexp.MustCompile(`https?://[^\s)]+`)
	reMention   = regexp.MustCompile(`(^|\s)(@\w{1,30})`)
)

type Options struct {
	StyleLinks bool
}

var DefaultOptions = Options{StyleLinks: true}

// ContentLines renders the displayed content of p wrapped to width.
func ContentLines(p timeline.Post, width int) []string {
	return ContentLinesWithOptions(p, width, DefaultOptions)
}

func ContentLinesWithOptions(p timeline.Post, width int, opts Options) []string {
	text := Text(p)
	if text == "" {
		return nil
	}
	lines := trimBlankLines(wrapText(text, max(1, width)))
	if opts.StyleLinks {
		lines = styleLines(lines)
	}
	return lines
}

// Text returns the displayed content of p as plain text with paragraph
// breaks kept as newlines.
func Text(p timeline.Post) string {
	return renderFragment(p.Content().Text)
}

// Summary flattens the content of p to a single line.
func Summary(p timeline.Post) string {
	return strings.Join(strings.Fields(Text(p)), " ")
}

// Links lists the distinct http(s) URLs in the content of p in order of
// appearance. Trailing sentence punctuation is not part of a link.
func Links(p timeline.Post) []string {
	matches := reHTTPURL.FindAllString(Text(p), -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?\"'")
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func renderFragment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return raw
	}
	body := findBodyNode(doc)
	if body == nil {
		return raw
	}
	var b strings.Builder
	renderChildren(body, &b)
	return normalizeText(b.String())
}

func stripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines) - 1
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < start {
		return nil
	}
	out := make([]string, 0, end-start+1)
	prevBlank := false
	for i := start; i <= end; i++ {
		blank := strings.TrimSpace(lines[i]) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, lines[i])
		prevBlank = blank
	}
	return out
}

// wrapText breaks text on word boundaries so no line exceeds width runes.
// Words longer than width are split.
func wrapText(text string, width int) []string {
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		prefix := ""
		if strings.HasPrefix(p, quoteMarker) {
			prefix = quoteMarker
			p = strings.TrimPrefix(p, quoteMarker)
		}
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		avail := max(1, width-utf8.RuneCountInString(prefix))
		line := ""
		for _, word := range words {
			for utf8.RuneCountInString(word) > avail {
				if line != "" {
					out = append(out, prefix+line)
					line = ""
				}
				r := []rune(word)
				out = append(out, prefix+string(r[:avail]))
				word = string(r[avail:])
			}
			if line == "" {
				line = word
				continue
			}
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= avail {
				line += " " + word
				continue
			}
			out = append(out, prefix+line)
			line = word
		}
		if line != "" {
			out = append(out, prefix+line)
		}
	}
	return out
}

func styleLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		quoted := strings.HasPrefix(line, quoteMarker)
		if quoted {
			line = strings.TrimPrefix(line, quoteMarker)
		}
		line = reHTTPURL.ReplaceAllStringFunc(line, func(m string) string {
			return linkStyle.Render(m)
		})
		line = reMention.ReplaceAllStringFunc(line, func(m string) string {
			sub := reMention.FindStringSubmatch(m)
			return sub[1] + mentionStyle.Render(sub[2])
		})
		if quoted {
			line = quotePrefix + quoteText.Render(line)
		}
		out[i] = line
	}
	return out
}

// Wrap breaks plain text to width without styling.
func Wrap(text string, width int) []string {
	return wrapText(text, max(1, width))
}
