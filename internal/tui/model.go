package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/glabrego/feedview-cli/internal/app"
	postrender "github.com/glabrego/feedview-cli/internal/render/post"
	"github.com/glabrego/feedview-cli/internal/session"
	"github.com/glabrego/feedview-cli/internal/timeline"
	tuiactions "github.com/glabrego/feedview-cli/internal/tui/actions"
	tuiplatform "github.com/glabrego/feedview-cli/internal/tui/platform"
	tuistate "github.com/glabrego/feedview-cli/internal/tui/state"
	tuitheme "github.com/glabrego/feedview-cli/internal/tui/theme"
	tuiview "github.com/glabrego/feedview-cli/internal/tui/view"
)

type clearStatusMsg struct {
	id int
}

// feedEvents collects session notifications between Update calls. It is
// shared by every copy of the Model.
type feedEvents struct {
	merges   []timeline.MergeResult
	replaced []int
	inFlight bool
}

func (e *feedEvents) OnMergeApplied(res timeline.MergeResult) { e.merges = append(e.merges, res) }
func (e *feedEvents) OnPostReplaced(index int)               { e.replaced = append(e.replaced, index) }
func (e *feedEvents) OnGateStateChanged(inFlight bool)       { e.inFlight = inFlight }

type Model struct {
	service tuiactions.Service
	sess    *session.Session
	events  *feedEvents
	log     zerolog.Logger
	theme   tuitheme.Theme

	cursor       int
	compact      bool
	relativeTime bool
	showHelp     bool
	inDetail     bool
	detailTop    int
	showGoToTop  bool
	width        int
	height       int
	status       string
	statusID     int
	err          error
	lastMerge    string

	openURLFn func(string) error
	copyURLFn func(string) error
	nowFn     func() time.Time
}

func NewModel(service tuiactions.Service, sess *session.Session, log zerolog.Logger) Model {
	events := &feedEvents{inFlight: sess.InFlight()}
	sess.SetListener(events)
	return Model{
		service:   service,
		sess:      sess,
		events:    events,
		log:       log.With().Str("component", "tui").Logger(),
		theme:     tuitheme.Default(),
		openURLFn: tuiplatform.OpenURLInBrowser,
		copyURLFn: tuiplatform.CopyURLToClipboard,
		nowFn:     time.Now,
	}
}

func (m *Model) ApplyPreferences(prefs app.UIPreferences) {
	m.compact = prefs.Compact
	m.relativeTime = prefs.RelativeTime
}

func (m Model) preferences() app.UIPreferences {
	return app.UIPreferences{Compact: m.compact, RelativeTime: m.relativeTime}
}

// Init refreshes only when nothing was restored.
func (m Model) Init() tea.Cmd {
	if m.sess.Len() > 0 {
		return nil
	}
	_, cmd := m.refresh()
	return cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.syncViewport()
	case tea.ResumeMsg:
		m.log.Debug().Int("posts", m.sess.Len()).Msg("resumed")
		if m.sess.Len() > 0 {
			return m, nil
		}
		return m.refresh()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tuiactions.FetchSuccessMsg:
		res, err := m.sess.Complete(msg.Cursor, msg.Posts, nil)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.applyEvents()
		m.lastMerge = fmt.Sprintf("%s %d", res.Kind, res.Count)
		switch {
		case msg.Cursor.Direction == timeline.Older && res.Count == 0:
			m.status = "No older posts"
		case msg.Cursor.Direction == timeline.Newer && res.Kind == timeline.MergeNone:
			m.status = "No new posts"
		case res.Kind == timeline.MergePrepend:
			m.status = fmt.Sprintf("%d new posts", res.Count)
		default:
			m.status = ""
		}
		m.log.Debug().Str("cursor", msg.Cursor.String()).Dur("duration", msg.Duration).Str("merge", m.lastMerge).Msg("fetch applied")
		return m.syncViewport()
	case tuiactions.FetchErrorMsg:
		_, err := m.sess.Complete(msg.Cursor, nil, msg.Err)
		m.applyEvents()
		m.status = ""
		m.err = err
		return m, nil
	case tuiactions.PostLoadedMsg:
		m.sess.Replace(msg.Post)
		m.applyEvents()
		return m, nil
	case tuiactions.PostLoadErrorMsg:
		m.err = fmt.Errorf("reload post %d: %w", msg.PostID, msg.Err)
		return m, nil
	case tuiactions.LikeToggledMsg:
		m.sess.Replace(msg.Post)
		m.applyEvents()
		m.err = nil
		return m.setStatus(msg.Status, 3*time.Second)
	case tuiactions.ToggleActionErrorMsg:
		m.status = ""
		m.err = msg.Err
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		return m.setStatus(msg.Status, 3*time.Second)
	case tuiactions.OpenURLErrorMsg:
		m.err = nil
		return m.setStatus(msg.Err.Error(), 4*time.Second)
	case tuiactions.SnapshotSavedMsg:
		m.log.Debug().Int("posts", msg.Items).Msg("snapshot saved")
		return m, nil
	case tuiactions.PersistErrorMsg:
		m.err = fmt.Errorf("save %s: %w", msg.What, msg.Err)
		return m, nil
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "ctrl+z":
		return m, tea.Sequence(m.saveSnapshotCmd(), tea.Suspend)
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.showHelp {
		if key == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.inDetail {
		return m.handleDetailKey(key)
	}

	switch key {
	case "up", "k":
		return m.moveCursorBy(-1)
	case "down", "j":
		return m.moveCursorBy(1)
	case "pgup", "ctrl+b":
		return m.moveCursorBy(-m.postsPerPage())
	case "pgdown", "ctrl+f":
		return m.moveCursorBy(m.postsPerPage())
	case "g", "t", "home":
		m.cursor = 0
		m.showGoToTop = false
		return m.syncViewport()
	case "enter":
		p, ok := m.currentPost()
		if !ok {
			return m, nil
		}
		m.inDetail = true
		m.detailTop = 0
		return m, m.loadPostCmd(p)
	case "r":
		return m.refresh()
	case "n":
		return m.backfill(true)
	case "l":
		return m.toggleLike()
	case "o":
		return m.openCurrentURL()
	case "y":
		return m.copyCurrentURL()
	case "c":
		m.compact = !m.compact
		m.err = nil
		m.status = "Compact mode: " + onOff(m.compact)
		return m, m.savePreferencesCmd()
	case "d":
		m.relativeTime = !m.relativeTime
		m.err = nil
		m.status = "Relative time: " + onOff(m.relativeTime)
		return m, m.savePreferencesCmd()
	}
	return m, nil
}

func (m Model) handleDetailKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "backspace":
		m.inDetail = false
		m.detailTop = 0
		return m.syncViewport()
	case "up", "k":
		if m.detailTop > 0 {
			m.detailTop--
		}
		return m, nil
	case "down", "j":
		if m.detailTop < tuiview.DetailMaxTop(len(m.detailLines()), m.detailBodyHeight()) {
			m.detailTop++
		}
		return m, nil
	case "[", "]":
		delta := -1
		if key == "]" {
			delta = 1
		}
		next := tuistate.ClampCursor(m.cursor+delta, m.sess.Len())
		if next == m.cursor {
			return m, nil
		}
		m.cursor = next
		m.detailTop = 0
		p, _ := m.currentPost()
		return m, m.loadPostCmd(p)
	case "l":
		return m.toggleLike()
	case "o":
		return m.openCurrentURL()
	case "y":
		return m.copyCurrentURL()
	}
	return m, nil
}

func (m Model) refresh() (Model, tea.Cmd) {
	if m.service == nil {
		return m, nil
	}
	c, ok := m.sess.BeginRefresh()
	if !ok {
		m.status = "Already loading"
		return m, nil
	}
	m.status = ""
	m.err = nil
	return m, tuiactions.FetchCmd(m.service, c)
}

func (m Model) backfill(manual bool) (Model, tea.Cmd) {
	if m.service == nil {
		return m, nil
	}
	c, ok, err := m.sess.BeginBackfill()
	if err != nil {
		if manual {
			m.status = "Nothing loaded yet, press r to refresh"
		}
		return m, nil
	}
	if !ok {
		if manual {
			m.status = "Already loading"
		}
		return m, nil
	}
	if manual {
		m.status = ""
		m.err = nil
	}
	return m, tuiactions.FetchCmd(m.service, c)
}

func (m Model) toggleLike() (Model, tea.Cmd) {
	p, ok := m.currentPost()
	if !ok || m.service == nil {
		return m, nil
	}
	m.status = ""
	m.err = nil
	return m, tuiactions.ToggleLikeCmd(m.service, p)
}

func (m Model) openCurrentURL() (Model, tea.Cmd) {
	p, ok := m.currentPost()
	if !ok {
		return m, nil
	}
	validURL, err := tuiplatform.ValidatePostURL(p.Content().URL)
	if err != nil {
		m.err = nil
		return m.setStatus(err.Error(), 4*time.Second)
	}
	return m, tuiactions.OpenURLCmd(validURL, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCurrentURL() (Model, tea.Cmd) {
	p, ok := m.currentPost()
	if !ok {
		return m, nil
	}
	validURL, err := tuiplatform.ValidatePostURL(p.Content().URL)
	if err != nil {
		m.err = nil
		return m.setStatus(err.Error(), 4*time.Second)
	}
	return m, tuiactions.CopyURLCmd(validURL, m.copyURLFn)
}

func (m Model) loadPostCmd(p timeline.Post) tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tuiactions.LoadPostCmd(m.service, p)
}

func (m Model) saveSnapshotCmd() tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tuiactions.SaveSnapshotCmd(m.service, m.sess.Snapshot())
}

func (m Model) savePreferencesCmd() tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tuiactions.SavePreferencesCmd(m.service, m.preferences())
}

func (m Model) setStatus(status string, after time.Duration) (Model, tea.Cmd) {
	m.status = status
	m.statusID++
	return m, clearStatusCmd(m.statusID, after)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// applyEvents folds pending session notifications into the view state.
// An open detail view stays on its post across merges.
func (m *Model) applyEvents() {
	for _, res := range m.events.merges {
		m.cursor = tuistate.CursorAfterMerge(m.cursor, res, m.inDetail)
		if m.inDetail && res.Kind != timeline.MergeReset {
			continue
		}
		if res.ScrollToTop || res.Kind == timeline.MergeReset {
			m.showGoToTop = false
			m.detailTop = 0
		}
	}
	m.events.merges = m.events.merges[:0]
	m.cursor = tuistate.ClampCursor(m.cursor, m.sess.Len())

	for _, idx := range m.events.replaced {
		if m.inDetail && idx == m.cursor {
			m.detailTop = min(m.detailTop, tuiview.DetailMaxTop(len(m.detailLines()), m.detailBodyHeight()))
		}
	}
	m.events.replaced = m.events.replaced[:0]
}

func (m Model) moveCursorBy(delta int) (Model, tea.Cmd) {
	if m.sess.Len() == 0 {
		return m, nil
	}
	m.cursor = tuistate.ClampCursor(m.cursor+delta, m.sess.Len())
	return m.syncViewport()
}

// syncViewport reports the visible window to the session and starts a
// backfill when it asks for one. Nothing is reported before the terminal
// size is known.
func (m Model) syncViewport() (Model, tea.Cmd) {
	if m.height <= 0 || m.inDetail {
		return m, nil
	}
	items := m.sess.Items()
	start, end := m.listWindow(len(items))
	top, bottom, ok := tuistate.VisibleBounds(items, start, end)
	if !ok {
		m.showGoToTop = false
		return m, nil
	}
	d := m.sess.OnScroll(top, bottom)
	m.showGoToTop = d.ShowGoToTop
	if d.Backfill {
		return m.backfill(false)
	}
	return m, nil
}

func (m Model) currentPost() (timeline.Post, bool) {
	items := m.sess.Items()
	if len(items) == 0 {
		return timeline.Post{}, false
	}
	return items[tuistate.ClampCursor(m.cursor, len(items))], true
}

func (m Model) listWindow(total int) (int, int) {
	return tuistate.CenteredWindow(total, m.cursor, m.postsPerPage())
}

func (m Model) postsPerPage() int {
	step := tuistate.PageStep(m.height, m.status != "" || m.err != nil)
	n := step / tuiview.LinesPerPost(m.compact)
	if n < 1 {
		n = 1
	}
	return n
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		usedByHeader := 6
		if m.status != "" || m.err != nil {
			usedByHeader += 2
		}
		if h := m.height - usedByHeader; h > 3 {
			return h
		}
	}
	return 16
}

func (m Model) detailLines() []string {
	p, ok := m.currentPost()
	if !ok {
		return nil
	}
	width := m.contentWidth() - 4
	if width < 20 {
		width = 20
	}
	return tuiview.DetailLines(p, width, 2, postrender.Wrap)
}

func (m Model) View() string {
	var b strings.Builder
	mode := "list"
	if m.inDetail {
		mode = "detail"
	}
	b.WriteString(m.theme.Title.Render("feedview") + " " + m.theme.ModePill.Render(mode) + "\n")
	b.WriteString(tuiview.Toolbar(m.inDetail) + "\n\n")

	switch {
	case m.showHelp:
		b.WriteString(strings.Join(tuiview.HelpLines(), "\n") + "\n")
	case m.inDetail:
		if lines := m.detailLines(); len(lines) > 0 {
			b.WriteString(tuiview.RenderDetailLines(lines, m.detailTop, m.detailBodyHeight()))
		} else {
			b.WriteString("No post selected.\n")
		}
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	return b.String()
}

func (m Model) listView() string {
	items := m.sess.Items()
	if len(items) == 0 {
		if m.events.inFlight {
			return "Loading timeline...\n"
		}
		return "No posts yet. Press r to refresh.\n"
	}
	var b strings.Builder
	if m.showGoToTop {
		b.WriteString(tuiview.GoToTopHint(m.contentWidth(), m.theme) + "\n")
	}
	start, end := m.listWindow(len(items))
	if m.height <= 0 {
		start, end = 0, len(items)
	}
	now := m.nowFn()
	b.WriteString(tuiview.RenderListBody(tuiview.ListRenderInput{
		Start:  start,
		End:    end,
		Cursor: tuistate.ClampCursor(m.cursor, len(items)),
		RenderPost: func(index int, active bool) []string {
			return tuiview.RenderPostLines(tuiview.PostLineParams{
				Post:         items[index],
				Now:          now,
				RelativeTime: m.relativeTime,
				Compact:      m.compact,
				Active:       active,
				Width:        m.contentWidth(),
			}, m.theme)
		},
	}))
	return b.String()
}

func (m Model) messagePanel() string {
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	return tuiview.CompactMessage(m.events.inFlight, m.err != nil, m.status, warning, m.theme)
}

func (m Model) footer() string {
	mode := "list"
	if m.inDetail {
		mode = "detail"
	}
	return tuiview.CompactFooter(tuiview.FooterInput{
		Mode:      mode,
		Shown:     m.sess.Len(),
		Cursor:    m.sess.Cursor(),
		LastMerge: m.lastMerge,
		Exhausted: m.sess.Exhausted(),
	}, m.theme)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
