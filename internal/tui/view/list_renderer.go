package view

import "strings"

type ListRenderInput struct {
	Start  int
	End    int
	Cursor int

	RenderPost func(index int, active bool) []string
}

func RenderListBody(in ListRenderInput) string {
	if in.Start >= in.End || in.Start < 0 {
		return ""
	}
	var b strings.Builder
	for i := in.Start; i < in.End; i++ {
		for _, line := range in.RenderPost(i, i == in.Cursor) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
