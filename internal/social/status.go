package social

import (
	"fmt"
	"strings"
	"time"

	"github.com/glabrego/feedview-cli/internal/timeline"
)

// Status is the subset of upstream status fields used by the app.
type Status struct {
	ID              int64       `json:"id"`
	CreatedAt       createdTime `json:"created_at"`
	FullText        string      `json:"full_text"`
	Text            string      `json:"text"`
	User            User        `json:"user"`
	FavoriteCount   int         `json:"favorite_count"`
	RetweetCount    int         `json:"retweet_count"`
	Favorited       bool        `json:"favorited"`
	RetweetedStatus *Status     `json:"retweeted_status"`
}

type User struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// createdTime parses the upstream "Mon Jan 02 15:04:05 -0700 2006" layout.
type createdTime struct {
	time.Time
}

func (t *createdTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	parsed, err := time.Parse(time.RubyDate, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("parse created_at %q: %w", raw, err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}

func (s Status) body() string {
	if s.FullText != "" {
		return s.FullText
	}
	return s.Text
}

// Post converts the wire status into the timeline model.
func (s Status) Post() timeline.Post {
	p := timeline.Post{
		ID:           s.ID,
		Author:       s.User.ScreenName,
		AuthorName:   s.User.Name,
		Text:         s.body(),
		CreatedAt:    s.CreatedAt.Time,
		LikeCount:    s.FavoriteCount,
		ReshareCount: s.RetweetCount,
		Liked:        s.Favorited,
	}
	if s.User.ScreenName != "" && s.ID > 0 {
		p.URL = fmt.Sprintf("%s/%s/status/%d", permalinkBase, s.User.ScreenName, s.ID)
	}
	if s.RetweetedStatus != nil {
		original := s.RetweetedStatus.Post()
		p.Original = &original
	}
	return p
}

func Posts(statuses []Status) []timeline.Post {
	out := make([]timeline.Post, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.Post())
	}
	return out
}
