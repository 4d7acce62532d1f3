package timeline

// Feed is the session's timeline state: items newest-first plus the last
// cursor used to fetch. Only Merge and Replace mutate Items.
type Feed struct {
	Items  []Post `json:"items"`
	Cursor Cursor `json:"cursor"`
}

func NewFeed() *Feed {
	return &Feed{Items: make([]Post, 0, RefreshPageSize)}
}

func (f *Feed) Len() int {
	return len(f.Items)
}

func (f *Feed) Empty() bool {
	return len(f.Items) == 0
}

// IndexOf returns the position of the item sharing p's matchable id, or -1.
func (f *Feed) IndexOf(p Post) int {
	id := p.MatchableID()
	for i := range f.Items {
		if f.Items[i].MatchableID() == id {
			return i
		}
	}
	return -1
}

// View returns a copy of the items safe to hand to a renderer.
func (f *Feed) View() []Post {
	return append([]Post(nil), f.Items...)
}

func (f *Feed) Last() (Post, bool) {
	if len(f.Items) == 0 {
		return Post{}, false
	}
	return f.Items[len(f.Items)-1], true
}
