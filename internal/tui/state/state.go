package state

import "github.com/glabrego/feedview-cli/internal/timeline"

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

// CenteredWindow returns the [start, end) rows to draw so cursor stays near
// the middle of a window of height rows.
func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// VisibleBounds returns the first and last posts of the window.
func VisibleBounds(items []timeline.Post, start, end int) (top, bottom timeline.Post, ok bool) {
	if start < 0 || end > len(items) || start >= end {
		return timeline.Post{}, timeline.Post{}, false
	}
	return items[start], items[end-1], true
}

// CursorAfterMerge moves the cursor after a merge. With keepSelection set
// it keeps pointing at the same post; otherwise a reset or a refresh that
// asks for it sends the cursor to the top.
func CursorAfterMerge(cursor int, res timeline.MergeResult, keepSelection bool) int {
	switch {
	case res.Kind == timeline.MergeReset:
		return 0
	case res.Kind == timeline.MergePrepend && keepSelection:
		return cursor + res.Count
	case res.ScrollToTop:
		return 0
	default:
		return cursor
	}
}
