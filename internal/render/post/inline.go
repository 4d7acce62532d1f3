package post

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

// quoteMarker tags blockquote lines between rendering and styling.
const quoteMarker = "> "

func renderChildren(node *nethtml.Node, b *strings.Builder) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderNode(child, b)
	}
}

func renderNode(node *nethtml.Node, b *strings.Builder) {
	switch node.Type {
	case nethtml.TextNode:
		b.WriteString(node.Data)
	case nethtml.ElementNode:
		switch strings.ToLower(node.Data) {
		case "script", "style", "noscript":
		case "br":
			b.WriteString("\n")
		case "img":
			if alt := nodeAttr(node, "alt"); alt != "" {
				b.WriteString(alt)
			}
		case "a":
			b.WriteString(renderAnchor(node))
		case "blockquote":
			var inner strings.Builder
			renderChildren(node, &inner)
			paragraphBreak(b)
			for _, line := range strings.Split(normalizeText(inner.String()), "\n") {
				b.WriteString(quoteMarker + line + "\n")
			}
			paragraphBreak(b)
		case "p", "div", "li":
			paragraphBreak(b)
			renderChildren(node, b)
			paragraphBreak(b)
		default:
			renderChildren(node, b)
		}
	}
}

func renderAnchor(node *nethtml.Node) string {
	var inner strings.Builder
	renderChildren(node, &inner)
	text := strings.Join(strings.Fields(inner.String()), " ")
	href := nodeAttr(node, "href")
	switch {
	case href == "":
		return text
	case text == "":
		return href
	case strings.EqualFold(text, href):
		return href
	case strings.HasPrefix(text, "@") || strings.HasPrefix(text, "#"):
		return text
	default:
		return text + " (" + href + ")"
	}
}

func paragraphBreak(b *strings.Builder) {
	s := b.String()
	switch {
	case s == "", strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		b.WriteString("\n")
	default:
		b.WriteString("\n\n")
	}
}

// normalizeText collapses runs of spaces inside each line and keeps at
// most one blank line between paragraphs.
func normalizeText(s string) string {
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	blank := false
	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" || part == strings.TrimSpace(quoteMarker) {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, part)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func findBodyNode(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBodyNode(child); found != nil {
			return found
		}
	}
	return nil
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}
