package timeline

import "time"

// Post is one timeline item. A reshare carries the reshared post in Original.
type Post struct {
	ID           int64     `json:"id"`
	Author       string    `json:"author"`
	AuthorName   string    `json:"author_name,omitempty"`
	Text         string    `json:"text"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int       `json:"like_count"`
	ReshareCount int       `json:"reshare_count"`
	Liked        bool      `json:"liked"`
	Original     *Post     `json:"original,omitempty"`
}

func (p Post) IsReshare() bool {
	return p.Original != nil
}

// OriginalID returns the reshared post id, or 0 when p is not a reshare.
func (p Post) OriginalID() int64 {
	if p.Original == nil {
		return 0
	}
	return p.Original.ID
}

// MatchableID is the id used to decide whether two posts are the same
// underlying content: a reshare resolves to the post it reshares.
func (p Post) MatchableID() int64 {
	if p.Original != nil {
		return p.Original.ID
	}
	return p.ID
}

func SamePost(a, b Post) bool {
	return a.MatchableID() == b.MatchableID()
}

// Content returns the post whose text should be displayed.
func (p Post) Content() Post {
	if p.Original != nil {
		return *p.Original
	}
	return p
}
