package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/feedview-cli/internal/app"
	"github.com/glabrego/feedview-cli/internal/timeline"
)

type Service interface {
	Fetch(ctx context.Context, c timeline.Cursor) ([]timeline.Post, error)
	Post(ctx context.Context, p timeline.Post) (timeline.Post, error)
	ToggleLike(ctx context.Context, p timeline.Post) (timeline.Post, error)
	SaveSnapshot(ctx context.Context, f *timeline.Feed) error
	SaveUIPreferences(ctx context.Context, p app.UIPreferences) error
}

// FetchSuccessMsg and FetchErrorMsg carry the cursor they were admitted
// with so the session can complete the right fetch.
type FetchSuccessMsg struct {
	Cursor   timeline.Cursor
	Posts    []timeline.Post
	Duration time.Duration
}

type FetchErrorMsg struct {
	Cursor   timeline.Cursor
	Err      error
	Duration time.Duration
}

type PostLoadedMsg struct {
	Post timeline.Post
}

type PostLoadErrorMsg struct {
	PostID int64
	Err    error
}

type LikeToggledMsg struct {
	Post   timeline.Post
	Status string
}

type ToggleActionErrorMsg struct {
	Err error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type SnapshotSavedMsg struct {
	Items int
}

type PersistErrorMsg struct {
	What string
	Err  error
}

func fetchTimeout(d timeline.Direction) time.Duration {
	if d == timeline.Older {
		return 12 * time.Second
	}
	return 10 * time.Second
}

func FetchCmd(service Service, c timeline.Cursor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout(c.Direction))
		defer cancel()
		start := time.Now()

		posts, err := service.Fetch(ctx, c)
		if err != nil {
			return FetchErrorMsg{Cursor: c, Err: err, Duration: time.Since(start)}
		}
		return FetchSuccessMsg{Cursor: c, Posts: posts, Duration: time.Since(start)}
	}
}

func LoadPostCmd(service Service, p timeline.Post) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		updated, err := service.Post(ctx, p)
		if err != nil {
			return PostLoadErrorMsg{PostID: p.ID, Err: err}
		}
		return PostLoadedMsg{Post: updated}
	}
}

func ToggleLikeCmd(service Service, p timeline.Post) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		updated, err := service.ToggleLike(ctx, p)
		if err != nil {
			return ToggleActionErrorMsg{Err: err}
		}
		status := "Unliked post"
		if updated.Content().Liked {
			status = "Liked post"
		}
		return LikeToggledMsg{Post: updated, Status: status}
	}
}

func SaveSnapshotCmd(service Service, f *timeline.Feed) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.SaveSnapshot(ctx, f); err != nil {
			return PersistErrorMsg{What: "timeline snapshot", Err: err}
		}
		return SnapshotSavedMsg{Items: f.Len()}
	}
}

func SavePreferencesCmd(service Service, prefs app.UIPreferences) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.SaveUIPreferences(ctx, prefs); err != nil {
			return PersistErrorMsg{What: "UI preferences", Err: err}
		}
		return nil
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened URL in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}
