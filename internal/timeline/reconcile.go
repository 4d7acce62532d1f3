package timeline

type MergeKind int

const (
	MergeNone MergeKind = iota
	MergeReset
	MergeAppend
	MergePrepend
)

func (k MergeKind) String() string {
	switch k {
	case MergeReset:
		return "reset"
	case MergeAppend:
		return "append"
	case MergePrepend:
		return "prepend"
	default:
		return "none"
	}
}

// MergeResult describes the rows a merge touched so a renderer can update
// incrementally.
type MergeResult struct {
	Kind  MergeKind
	Start int
	Count int
	// ScrollToTop is set when newer posts were prepended.
	ScrollToTop bool
	// EchoMismatch is set when an older batch did not start with the feed's
	// last post. The first item is dropped regardless.
	EchoMismatch bool
}

func (r MergeResult) Applied() bool {
	return r.Kind != MergeNone
}

// Merge folds a fetched batch into f. batch must be newest-first, as returned
// for cursor c.
func Merge(f *Feed, batch []Post, c Cursor) MergeResult {
	if len(batch) == 0 {
		return MergeResult{Kind: MergeNone}
	}

	var res MergeResult
	switch {
	case len(f.Items) == 0:
		f.Items = append(make([]Post, 0, len(batch)), batch...)
		res = MergeResult{Kind: MergeReset, Count: len(batch)}
	case c.Direction == Older:
		last := f.Items[len(f.Items)-1]
		rest := batch[1:]
		res = MergeResult{
			Kind:         MergeAppend,
			Start:        len(f.Items),
			Count:        len(rest),
			EchoMismatch: !SamePost(batch[0], last),
		}
		f.Items = append(f.Items, rest...)
	default:
		items := make([]Post, 0, len(batch)+len(f.Items))
		items = append(items, batch...)
		f.Items = append(items, f.Items...)
		res = MergeResult{Kind: MergePrepend, Count: len(batch), ScrollToTop: true}
	}

	f.Cursor = c
	return res
}

// Replace overwrites the first item matching updated's matchable id and
// returns its index. It reports false when no item matches.
func Replace(f *Feed, updated Post) (int, bool) {
	i := f.IndexOf(updated)
	if i < 0 {
		return -1, false
	}
	f.Items[i] = updated
	return i, true
}
