package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glabrego/feedview-cli/internal/metrics"
	"github.com/glabrego/feedview-cli/internal/timeline"
)

var (
	ErrFetchInFlight = errors.New("a fetch is already in flight")
	ErrRestoreBusy   = errors.New("cannot restore while a fetch is in flight")
)

type Fetcher interface {
	Fetch(ctx context.Context, c timeline.Cursor) ([]timeline.Post, error)
}

// Listener receives the deltas a renderer needs to update incrementally.
type Listener interface {
	OnMergeApplied(res timeline.MergeResult)
	OnPostReplaced(index int)
	OnGateStateChanged(inFlight bool)
}

// FetchError is an upstream failure for the fetch started with Cursor.
// The feed is left untouched when it is returned.
type FetchError struct {
	Cursor timeline.Cursor
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Cursor.Direction, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type pending struct {
	id      string
	cursor  timeline.Cursor
	started time.Time
}

// Session owns one feed and its fetch gate for the life of a UI session.
// Begin* and Complete are meant to run on the UI event loop; the fetch in
// between may run anywhere.
type Session struct {
	feed      *timeline.Feed
	gate      *timeline.Gate
	listener  Listener
	log       zerolog.Logger
	metrics   *metrics.Metrics
	nowFn     func() time.Time
	inflight  pending
	exhausted bool
}

func New(feed *timeline.Feed, listener Listener, log zerolog.Logger, m *metrics.Metrics) *Session {
	if feed == nil {
		feed = timeline.NewFeed()
	}
	if listener == nil {
		listener = nopListener{}
	}
	s := &Session{
		feed:     feed,
		listener: listener,
		log:      log.With().Str("component", "session").Logger(),
		metrics:  m,
		nowFn:    time.Now,
	}
	s.gate = timeline.NewGate(func(inFlight bool) { s.listener.OnGateStateChanged(inFlight) })
	return s
}

// SetListener replaces the listener. A nil listener discards notifications.
func (s *Session) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	s.listener = l
}

// Items returns a copy of the feed for rendering.
func (s *Session) Items() []timeline.Post {
	return s.feed.View()
}

func (s *Session) Len() int {
	return s.feed.Len()
}

func (s *Session) Cursor() timeline.Cursor {
	return s.feed.Cursor
}

func (s *Session) InFlight() bool {
	return s.gate.InFlight()
}

// Exhausted reports that the last backfill found no older posts.
func (s *Session) Exhausted() bool {
	return s.exhausted
}

// BeginRefresh admits a fetch for newer posts. It returns false when
// another fetch holds the gate.
func (s *Session) BeginRefresh() (timeline.Cursor, bool) {
	if !s.admit(timeline.Newer) {
		return timeline.Cursor{}, false
	}
	c := timeline.ForRefresh(s.feed)
	s.track(c)
	return c, true
}

// BeginBackfill admits a fetch for older posts. It fails with
// timeline.ErrEmptyFeed before touching the gate when nothing is loaded.
func (s *Session) BeginBackfill() (timeline.Cursor, bool, error) {
	c, err := timeline.ForBackfill(s.feed)
	if err != nil {
		return timeline.Cursor{}, false, err
	}
	if !s.admit(timeline.Older) {
		return timeline.Cursor{}, false, nil
	}
	s.track(c)
	return c, true, nil
}

// Complete applies the outcome of an admitted fetch and releases the gate.
func (s *Session) Complete(c timeline.Cursor, batch []timeline.Post, fetchErr error) (timeline.MergeResult, error) {
	defer s.gate.Release()

	p := s.inflight
	s.inflight = pending{}
	elapsed := s.nowFn().Sub(p.started)
	log := s.log.With().Str("fetch", p.id).Str("cursor", c.String()).Dur("elapsed", elapsed).Logger()
	if p.cursor != c {
		log.Warn().Str("admitted", p.cursor.String()).Msg("completed cursor differs from admitted cursor")
	}

	if fetchErr != nil {
		s.observeFetch(c, "error", elapsed)
		log.Warn().Err(fetchErr).Msg("fetch failed; feed unchanged")
		return timeline.MergeResult{}, &FetchError{Cursor: c, Err: fetchErr}
	}
	s.observeFetch(c, "ok", elapsed)

	res := timeline.Merge(s.feed, batch, c)
	switch {
	case c.Direction == timeline.Older && res.Count == 0:
		s.exhausted = true
	case res.Kind == timeline.MergeReset || (res.Kind == timeline.MergePrepend && res.Count > 0):
		s.exhausted = false
	}
	if res.EchoMismatch {
		log.Warn().Int64("boundary", c.BoundaryID).Msg("older batch did not start at the boundary post")
	}
	if s.metrics != nil {
		s.metrics.ObserveMerge(res.Kind.String(), res.Count, s.feed.Len())
	}
	log.Debug().
		Int("batch", len(batch)).
		Str("kind", res.Kind.String()).
		Int("count", res.Count).
		Int("feed", s.feed.Len()).
		Msg("fetch merged")

	if res.Applied() {
		s.listener.OnMergeApplied(res)
	}
	return res, nil
}

// Refresh runs a whole refresh synchronously.
func (s *Session) Refresh(ctx context.Context, f Fetcher) (timeline.MergeResult, error) {
	c, ok := s.BeginRefresh()
	if !ok {
		return timeline.MergeResult{}, ErrFetchInFlight
	}
	batch, err := f.Fetch(ctx, c)
	return s.Complete(c, batch, err)
}

// Backfill runs a whole backfill synchronously.
func (s *Session) Backfill(ctx context.Context, f Fetcher) (timeline.MergeResult, error) {
	c, ok, err := s.BeginBackfill()
	if err != nil {
		return timeline.MergeResult{}, err
	}
	if !ok {
		return timeline.MergeResult{}, ErrFetchInFlight
	}
	batch, err := f.Fetch(ctx, c)
	return s.Complete(c, batch, err)
}

// Replace swaps in a fresher copy of a post already in the feed.
func (s *Session) Replace(updated timeline.Post) (int, bool) {
	idx, ok := timeline.Replace(s.feed, updated)
	if s.metrics != nil {
		s.metrics.ObserveReplace(ok)
	}
	if !ok {
		s.log.Debug().Int64("post", updated.MatchableID()).Msg("replace target not in feed")
		return idx, false
	}
	s.listener.OnPostReplaced(idx)
	return idx, true
}

// Snapshot returns a copy of the feed suitable for persisting.
func (s *Session) Snapshot() *timeline.Feed {
	return &timeline.Feed{Items: s.feed.View(), Cursor: s.feed.Cursor}
}

// Restore swaps the feed for a previously saved one.
func (s *Session) Restore(f *timeline.Feed) error {
	if s.gate.InFlight() {
		return ErrRestoreBusy
	}
	if f == nil {
		f = timeline.NewFeed()
	}
	s.feed = f
	s.exhausted = false
	if s.metrics != nil {
		s.metrics.ObserveMerge(timeline.MergeReset.String(), 0, f.Len())
	}
	s.listener.OnMergeApplied(timeline.MergeResult{Kind: timeline.MergeReset, Count: f.Len()})
	return nil
}

func (s *Session) admit(d timeline.Direction) bool {
	if s.gate.TryAcquire() {
		return true
	}
	if s.metrics != nil {
		s.metrics.FetchRejected.WithLabelValues(d.String()).Inc()
	}
	s.log.Debug().Str("direction", d.String()).Msg("fetch rejected; gate held")
	return false
}

func (s *Session) track(c timeline.Cursor) {
	s.inflight = pending{id: uuid.NewString(), cursor: c, started: s.nowFn()}
	s.log.Debug().Str("fetch", s.inflight.id).Str("cursor", c.String()).Msg("fetch started")
}

func (s *Session) observeFetch(c timeline.Cursor, outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveFetch(c.Direction.String(), outcome, d)
	}
}

type nopListener struct{}

func (nopListener) OnMergeApplied(timeline.MergeResult) {}
func (nopListener) OnPostReplaced(int)                  {}
func (nopListener) OnGateStateChanged(bool)             {}
