package timeline

// GoToTopThreshold is the first top-row index at which the go-to-top
// affordance is shown.
const GoToTopThreshold = 4

// ShouldBackfill reports whether the bottom visible post is the last loaded one.
func ShouldBackfill(visibleBottom Post, f *Feed) bool {
	last, ok := f.Last()
	if !ok {
		return false
	}
	return SamePost(visibleBottom, last)
}

// ShouldShowGoToTop reports whether the top visible post sits at least
// GoToTopThreshold rows below the newest item.
func ShouldShowGoToTop(visibleTop Post, f *Feed) bool {
	return f.IndexOf(visibleTop) >= GoToTopThreshold
}
