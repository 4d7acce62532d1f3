package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/glabrego/feedview-cli/internal/app"
	"github.com/glabrego/feedview-cli/internal/session"
	"github.com/glabrego/feedview-cli/internal/timeline"
	tuiactions "github.com/glabrego/feedview-cli/internal/tui/actions"
	tuiview "github.com/glabrego/feedview-cli/internal/tui/view"
)

type fakeService struct {
	batches [][]timeline.Post
	err     error
	cursors []timeline.Cursor

	post       timeline.Post
	liked      timeline.Post
	savedFeed  *timeline.Feed
	savedPrefs app.UIPreferences
}

func (f *fakeService) Fetch(_ context.Context, c timeline.Cursor) ([]timeline.Post, error) {
	f.cursors = append(f.cursors, c)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeService) Post(_ context.Context, p timeline.Post) (timeline.Post, error) {
	if f.err != nil {
		return timeline.Post{}, f.err
	}
	return f.post, nil
}

func (f *fakeService) ToggleLike(_ context.Context, p timeline.Post) (timeline.Post, error) {
	if f.err != nil {
		return timeline.Post{}, f.err
	}
	return f.liked, nil
}

func (f *fakeService) SaveSnapshot(_ context.Context, feed *timeline.Feed) error {
	f.savedFeed = feed
	return nil
}

func (f *fakeService) SaveUIPreferences(_ context.Context, p app.UIPreferences) error {
	f.savedPrefs = p
	return nil
}

func testPosts(ids ...int64) []timeline.Post {
	now := time.Date(2026, 2, 11, 16, 0, 0, 0, time.UTC)
	out := make([]timeline.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, timeline.Post{
			ID:        id,
			Author:    "ana",
			Text:      "post body",
			URL:       "https://twitter.com/ana/status/1",
			CreatedAt: now,
		})
	}
	return out
}

func newTestModel(svc tuiactions.Service, restored []timeline.Post) Model {
	var feed *timeline.Feed
	if len(restored) > 0 {
		feed = &timeline.Feed{Items: restored, Cursor: timeline.Cursor{Direction: timeline.Newer, PageSize: timeline.RefreshPageSize}}
	}
	sess := session.New(feed, nil, zerolog.Nop(), nil)
	m := NewModel(svc, sess, zerolog.Nop())
	m.nowFn = func() time.Time { return time.Date(2026, 2, 11, 18, 0, 0, 0, time.UTC) }
	m.openURLFn = func(string) error { return nil }
	m.copyURLFn = func(string) error { return nil }
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModelInit_RefreshesEmptyFeed(t *testing.T) {
	svc := &fakeService{batches: [][]timeline.Post{testPosts(3, 2, 1)}}
	m := newTestModel(svc, nil)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected initial refresh command")
	}
	if !m.events.inFlight {
		t.Fatal("expected gate held while initial refresh runs")
	}
	if !strings.Contains(m.View(), "Loading timeline...") {
		t.Fatalf("expected loading placeholder, got:\n%s", m.View())
	}

	m, _ = update(t, m, cmd())
	if m.sess.Len() != 3 || m.cursor != 0 {
		t.Fatalf("unexpected state after refresh: len=%d cursor=%d", m.sess.Len(), m.cursor)
	}
	if m.events.inFlight || m.sess.InFlight() {
		t.Fatal("expected gate released")
	}
	if m.lastMerge != "reset 3" {
		t.Fatalf("unexpected last merge: %q", m.lastMerge)
	}
}

func TestModelInit_SkipsRefreshWhenRestored(t *testing.T) {
	m := newTestModel(&fakeService{}, testPosts(2, 1))
	if cmd := m.Init(); cmd != nil {
		t.Fatal("expected no refresh for a restored feed")
	}
}

func TestModelUpdate_RefreshError(t *testing.T) {
	svc := &fakeService{err: errors.New("network")}
	m := newTestModel(svc, testPosts(2, 1))

	m, cmd := update(t, m, keyRune('r'))
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	m, _ = update(t, m, cmd())

	var fetchErr *session.FetchError
	if !errors.As(m.err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", m.err)
	}
	if m.sess.InFlight() {
		t.Fatal("expected gate released after failure")
	}
	if m.sess.Len() != 2 {
		t.Fatalf("expected feed untouched, got %d posts", m.sess.Len())
	}
	if !strings.Contains(stripANSI(m.View()), "state: warning") {
		t.Fatalf("expected warning state in view, got:\n%s", m.View())
	}
}

func TestModelUpdate_SecondRefreshRejectedWhileInFlight(t *testing.T) {
	svc := &fakeService{batches: [][]timeline.Post{testPosts(3)}}
	m := newTestModel(svc, testPosts(2, 1))

	m, cmd := update(t, m, keyRune('r'))
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	m, second := update(t, m, keyRune('r'))
	if second != nil {
		t.Fatal("expected second refresh to be dropped")
	}
	if m.status != "Already loading" {
		t.Fatalf("unexpected status: %q", m.status)
	}

	m, _ = update(t, m, cmd())
	if m.sess.Len() != 3 || m.status != "1 new posts" {
		t.Fatalf("unexpected state after refresh: len=%d status=%q", m.sess.Len(), m.status)
	}
	if len(svc.cursors) != 1 || svc.cursors[0].BoundaryID != 2 {
		t.Fatalf("unexpected cursors: %+v", svc.cursors)
	}
}

func TestModelUpdate_GoToTopAndAutoBackfill(t *testing.T) {
	svc := &fakeService{batches: [][]timeline.Post{testPosts(11, 10, 9)}}
	m := newTestModel(svc, testPosts(20, 19, 18, 17, 16, 15, 14, 13, 12, 11))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	if m.postsPerPage() != 3 {
		t.Fatalf("expected 3 posts per page, got %d", m.postsPerPage())
	}

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, keyRune('j'))
	}
	if !m.showGoToTop {
		t.Fatal("expected go-to-top affordance after scrolling down")
	}
	if !strings.Contains(stripANSI(m.View()), "go to top") {
		t.Fatal("expected go-to-top hint in view")
	}

	m, _ = update(t, m, keyRune('g'))
	if m.cursor != 0 || m.showGoToTop {
		t.Fatalf("expected go to top, got cursor=%d show=%v", m.cursor, m.showGoToTop)
	}

	var backfill tea.Cmd
	for i := 0; i < 9 && backfill == nil; i++ {
		m, backfill = update(t, m, keyRune('j'))
	}
	if backfill == nil {
		t.Fatal("expected backfill when the last post became visible")
	}
	if m.cursor != 8 {
		t.Fatalf("expected backfill at cursor 8, got %d", m.cursor)
	}

	m, _ = update(t, m, backfill())
	if got := svc.cursors[0]; got.Direction != timeline.Older || got.BoundaryID != 11 {
		t.Fatalf("unexpected backfill cursor: %+v", got)
	}
	if m.sess.Len() != 12 || m.cursor != 8 {
		t.Fatalf("unexpected state after backfill: len=%d cursor=%d", m.sess.Len(), m.cursor)
	}
}

func TestModelUpdate_EmptyBackfillStopsAutoLoading(t *testing.T) {
	m := newTestModel(&fakeService{}, testPosts(2, 1))

	m, cmd := update(t, m, keyRune('n'))
	if cmd == nil {
		t.Fatal("expected manual backfill command")
	}
	m, _ = update(t, m, cmd())
	if m.status != "No older posts" || !m.sess.Exhausted() {
		t.Fatalf("unexpected state: status=%q exhausted=%v", m.status, m.sess.Exhausted())
	}

	m, cmd = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if cmd != nil {
		t.Fatal("expected no auto backfill once exhausted")
	}
	if !strings.Contains(stripANSI(m.View()), "end of timeline") {
		t.Fatal("expected exhausted marker in footer")
	}
}

func TestModelUpdate_ManualBackfillOnEmptyFeed(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	m, cmd := update(t, m, keyRune('n'))
	if cmd != nil {
		t.Fatal("expected no command without posts")
	}
	if !strings.Contains(m.status, "press r") {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModelUpdate_DetailReloadsPost(t *testing.T) {
	fresh := testPosts(2)[0]
	fresh.LikeCount = 42
	svc := &fakeService{post: fresh}
	m := newTestModel(svc, testPosts(3, 2, 1))

	m, _ = update(t, m, keyRune('j'))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.inDetail || cmd == nil {
		t.Fatal("expected detail mode with reload command")
	}
	m, _ = update(t, m, cmd())
	if got := m.sess.Items()[1].LikeCount; got != 42 {
		t.Fatalf("expected reloaded post in place, got like count %d", got)
	}
	if !strings.Contains(stripANSI(m.View()), "Likes: 42") {
		t.Fatalf("expected detail view with fresh counts, got:\n%s", m.View())
	}

	m, cmd = update(t, m, keyRune(']'))
	if m.cursor != 2 || cmd == nil {
		t.Fatalf("expected next post with reload, cursor=%d", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.inDetail {
		t.Fatal("expected list mode after esc")
	}
}

func TestModelUpdate_RefreshKeepsOpenDetailPost(t *testing.T) {
	svc := &fakeService{batches: [][]timeline.Post{testPosts(7, 6)}}
	m := newTestModel(svc, testPosts(5, 4, 3))

	m, refresh := update(t, m, keyRune('r'))
	if refresh == nil {
		t.Fatal("expected refresh command")
	}
	m, _ = update(t, m, keyRune('j'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.inDetail {
		t.Fatal("expected detail mode")
	}

	m, _ = update(t, m, refresh())
	p, ok := m.currentPost()
	if !ok || p.ID != 4 || m.cursor != 3 {
		t.Fatalf("expected detail to stay on post 4, got id=%d cursor=%d", p.ID, m.cursor)
	}
	if m.status != "2 new posts" {
		t.Fatalf("unexpected status: %q", m.status)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if p, _ := m.currentPost(); p.ID != 4 {
		t.Fatalf("expected list selection on post 4 after esc, got %d", p.ID)
	}
}

func TestModelUpdate_RefreshInListMovesToTop(t *testing.T) {
	svc := &fakeService{batches: [][]timeline.Post{testPosts(7, 6)}}
	m := newTestModel(svc, testPosts(5, 4, 3))

	m, _ = update(t, m, keyRune('j'))
	m, refresh := update(t, m, keyRune('r'))
	m, _ = update(t, m, refresh())
	if m.cursor != 0 {
		t.Fatalf("expected cursor at top after refresh in list view, got %d", m.cursor)
	}
}

func TestModelUpdate_ReplacedDetailPostClampsScroll(t *testing.T) {
	fresh := testPosts(4)[0]
	fresh.Text = "short"
	m := newTestModel(&fakeService{}, testPosts(5, 4, 3))

	m, _ = update(t, m, keyRune('j'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.detailTop = 50

	m, _ = update(t, m, tuiactions.PostLoadedMsg{Post: fresh})
	want := tuiview.DetailMaxTop(len(m.detailLines()), m.detailBodyHeight())
	if m.detailTop != want {
		t.Fatalf("expected detail scroll clamped to %d, got %d", want, m.detailTop)
	}

	m.detailTop = 50
	m, _ = update(t, m, tuiactions.PostLoadedMsg{Post: testPosts(3)[0]})
	if m.detailTop != 50 {
		t.Fatalf("expected scroll untouched when another row is replaced, got %d", m.detailTop)
	}
}

func TestModelUpdate_ToggleLikeReplacesPost(t *testing.T) {
	liked := testPosts(3)[0]
	liked.Liked = true
	svc := &fakeService{liked: liked}
	m := newTestModel(svc, testPosts(3, 2))

	m, cmd := update(t, m, keyRune('l'))
	if cmd == nil {
		t.Fatal("expected like command")
	}
	m, _ = update(t, m, cmd())
	if !m.sess.Items()[0].Liked {
		t.Fatal("expected post liked in place")
	}
	if m.status != "Liked post" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModelUpdate_OpenAndCopyURL(t *testing.T) {
	m := newTestModel(&fakeService{}, testPosts(1))

	_, cmd := update(t, m, keyRune('o'))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	if msg, ok := cmd().(tuiactions.OpenURLSuccessMsg); !ok || !msg.Opened {
		t.Fatalf("expected opened URL, got %T", cmd())
	}

	_, cmd = update(t, m, keyRune('y'))
	if _, ok := cmd().(tuiactions.OpenURLSuccessMsg); !ok {
		t.Fatalf("expected copied URL, got %T", cmd())
	}

	noURL := newTestModel(&fakeService{}, []timeline.Post{{ID: 1}})
	noURL, _ = update(t, noURL, keyRune('o'))
	if noURL.status != "post has no URL" {
		t.Fatalf("unexpected status: %q", noURL.status)
	}
}

func TestModelUpdate_PreferencesPersist(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc, testPosts(1))

	m, cmd := update(t, m, keyRune('c'))
	if !m.compact || cmd == nil {
		t.Fatal("expected compact toggled with save command")
	}
	cmd()
	m, cmd = update(t, m, keyRune('d'))
	cmd()
	if !svc.savedPrefs.Compact || !svc.savedPrefs.RelativeTime {
		t.Fatalf("unexpected saved preferences: %+v", svc.savedPrefs)
	}
	if !strings.Contains(stripANSI(m.View()), "[2 hours ago]") {
		t.Fatalf("expected relative time in list, got:\n%s", m.View())
	}
}

func TestModelUpdate_SuspendAndResume(t *testing.T) {
	m := newTestModel(&fakeService{}, testPosts(1))
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ}); cmd == nil {
		t.Fatal("expected suspend command")
	}
	if _, cmd := update(t, m, tea.ResumeMsg{}); cmd != nil {
		t.Fatal("expected no refresh on resume with posts")
	}

	empty := newTestModel(&fakeService{}, nil)
	if _, cmd := update(t, empty, tea.ResumeMsg{}); cmd == nil {
		t.Fatal("expected refresh on resume with an empty feed")
	}
}

func TestModelView_ShowsPostsAndFooter(t *testing.T) {
	m := newTestModel(&fakeService{}, testPosts(2, 1))
	view := stripANSI(m.View())
	for _, want := range []string{"feedview", "@ana", "post body", "2 posts", "state: idle"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, view)
		}
	}
}
