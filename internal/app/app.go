package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/glabrego/feedview-cli/internal/social"
	"github.com/glabrego/feedview-cli/internal/timeline"
)

const SnapshotKey = "home"

type TimelineClient interface {
	HomeTimeline(ctx context.Context, q social.TimelineQuery) ([]social.Status, error)
	ShowStatus(ctx context.Context, id int64) (social.Status, error)
	Like(ctx context.Context, id int64) (social.Status, error)
	Unlike(ctx context.Context, id int64) (social.Status, error)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error)
	DeleteSnapshot(ctx context.Context, key string) error
}

type PreferenceStore interface {
	SavePreferences(ctx context.Context, values map[string]string) error
	LoadPreferences(ctx context.Context) (map[string]string, error)
}

type UIPreferences struct {
	Compact      bool
	RelativeTime bool
}

type Service struct {
	client    TimelineClient
	snapshots SnapshotStore
	prefs     PreferenceStore
}

func NewService(client TimelineClient, snapshots SnapshotStore, prefs PreferenceStore) *Service {
	return &Service{client: client, snapshots: snapshots, prefs: prefs}
}

// Fetch requests the page described by c, newest-first.
func (s *Service) Fetch(ctx context.Context, c timeline.Cursor) ([]timeline.Post, error) {
	q := social.TimelineQuery{Count: c.PageSize}
	if c.HasBoundary {
		switch c.Direction {
		case timeline.Older:
			q.MaxID = c.BoundaryID
		default:
			q.SinceID = c.BoundaryID
		}
	}

	statuses, err := s.client.HomeTimeline(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s posts: %w", c.Direction, err)
	}
	return social.Posts(statuses), nil
}

// Post loads the current version of p, keeping its reshare wrapper.
func (s *Service) Post(ctx context.Context, p timeline.Post) (timeline.Post, error) {
	status, err := s.client.ShowStatus(ctx, p.ID)
	if err != nil {
		return timeline.Post{}, fmt.Errorf("load post %d: %w", p.ID, err)
	}
	return status.Post(), nil
}

// ToggleLike flips the like state of the displayed content of p and returns
// the updated post.
func (s *Service) ToggleLike(ctx context.Context, p timeline.Post) (timeline.Post, error) {
	content := p.Content()
	var (
		status social.Status
		err    error
	)
	if content.Liked {
		status, err = s.client.Unlike(ctx, content.ID)
	} else {
		status, err = s.client.Like(ctx, content.ID)
	}
	if err != nil {
		return timeline.Post{}, fmt.Errorf("toggle like on %d: %w", content.ID, err)
	}

	updated := status.Post()
	if p.IsReshare() {
		wrapper := p
		wrapper.Original = &updated
		return wrapper, nil
	}
	return updated, nil
}

func (s *Service) SaveSnapshot(ctx context.Context, f *timeline.Feed) error {
	payload, err := timeline.EncodeSnapshot(f)
	if err != nil {
		return err
	}
	if err := s.snapshots.SaveSnapshot(ctx, SnapshotKey, payload); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns found=false when nothing was saved yet. A snapshot
// that cannot be decoded is deleted and reported as an error.
func (s *Service) LoadSnapshot(ctx context.Context) (*timeline.Feed, bool, error) {
	payload, found, err := s.snapshots.LoadSnapshot(ctx, SnapshotKey)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	f, err := timeline.DecodeSnapshot(payload)
	if err != nil {
		// Unreadable snapshots are removed.
		if delErr := s.snapshots.DeleteSnapshot(ctx, SnapshotKey); delErr != nil {
			return nil, false, fmt.Errorf("%w (discard failed: %v)", err, delErr)
		}
		return nil, false, err
	}
	return f, true, nil
}

func (s *Service) LoadUIPreferences(ctx context.Context) (UIPreferences, error) {
	values, err := s.prefs.LoadPreferences(ctx)
	if err != nil {
		return UIPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return UIPreferences{
		Compact:      parseBool(values["compact"]),
		RelativeTime: parseBool(values["relative_time"]),
	}, nil
}

func (s *Service) SaveUIPreferences(ctx context.Context, p UIPreferences) error {
	err := s.prefs.SavePreferences(ctx, map[string]string{
		"compact":       strconv.FormatBool(p.Compact),
		"relative_time": strconv.FormatBool(p.RelativeTime),
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
