package tui

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hello97-gg/hallotype/internal/achieve"
	"github.com/hello97-gg/hallotype/internal/engine"
	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/race"
	"github.com/hello97-gg/hallotype/internal/sound"
	statsPkg "github.com/hello97-gg/hallotype/internal/stats"
	"github.com/hello97-gg/hallotype/internal/store"
	"github.com/hello97-gg/hallotype/internal/words"
)

const (
	pollInterval   = 100 * time.Millisecond
	sampleInterval = time.Second
	soloWordCount  = 120
)

type pollMsg time.Time
type sampleMsg time.Time
type raceMsg race.Envelope
type raceClosedMsg struct{}

// Options configures a typing session's UI.
type Options struct {
	TimeLimit int
	Tier      model.Tier
	Words     []string // overrides generated words when set
	Sounds    sound.Player

	// Multiplayer. SelfID identifies this player in room state.
	Race        *race.Client
	SelfID      string
	InitialRoom *model.RoomState
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	opts  Options
	store *store.Store
	gen   *words.Generator
	eng   *engine.Engine

	width  int
	height int

	typedHistory []string

	result   *model.ScoreResult
	unlocked []string
	notice   string

	roomState *model.RoomState
	raceOver  bool
}

// NewModel constructs a typing TUI model.
func NewModel(opts Options, st *store.Store) *Model {
	if opts.Sounds == nil {
		opts.Sounds = sound.Null{}
	}
	m := &Model{
		opts:      opts,
		store:     st,
		gen:       words.New(),
		roomState: opts.InitialRoom,
	}
	m.eng = engine.New(engine.Config{
		Words:      m.sessionWords(),
		TimeLimit:  opts.TimeLimit,
		Tier:       opts.Tier,
		Race:       opts.Race != nil,
		Sounds:     opts.Sounds,
		OnComplete: m.onComplete,
	})
	return m
}

func (m *Model) sessionWords() []string {
	if len(m.opts.Words) > 0 {
		return m.opts.Words
	}
	return m.gen.Generate(soloWordCount, m.opts.Tier)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{pollTick(), sampleTick()}
	if m.opts.Race != nil {
		cmds = append(cmds, m.listenRace())
	}
	return tea.Batch(cmds...)
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func sampleTick() tea.Cmd {
	return tea.Tick(sampleInterval, func(t time.Time) tea.Msg { return sampleMsg(t) })
}

func (m *Model) listenRace() tea.Cmd {
	return func() tea.Msg {
		env, ok := <-m.opts.Race.Events()
		if !ok {
			return raceClosedMsg{}
		}
		return raceMsg(env)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case pollMsg:
		return m.handlePoll()
	case sampleMsg:
		if m.eng.State() == engine.Running {
			m.eng.Sample()
		}
		if m.eng.State() != engine.Complete {
			return m, sampleTick()
		}
		return m, nil
	case raceMsg:
		return m.handleRaceEvent(race.Envelope(msg))
	case raceClosedMsg:
		if !m.raceOver && m.result == nil {
			m.notice = "connection to race server lost"
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, m.quit()
	case tea.KeyEnter:
		if m.result != nil && m.opts.Race == nil {
			m.restart()
			return m, tea.Batch(pollTick(), sampleTick())
		}
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.eng.Backspace()
		return m, nil
	case tea.KeySpace:
		m.typeRune(' ')
		return m, nil
	case tea.KeyRunes:
		if m.raceWaiting() {
			if string(msg.Runes) == "s" && m.roomState.HostID == m.opts.SelfID {
				if err := m.opts.Race.StartRoom(); err != nil {
					m.notice = "failed to start race"
				}
			}
			return m, nil
		}
		for _, r := range msg.Runes {
			m.typeRune(r)
		}
		return m, nil
	default:
		return m, nil
	}
}

// raceWaiting reports whether this is a multiplayer session whose room has
// not started yet. Keystrokes are swallowed until the host starts.
func (m *Model) raceWaiting() bool {
	return m.opts.Race != nil && (m.roomState == nil || m.roomState.Status == model.RoomWaiting)
}

func (m *Model) typeRune(r rune) {
	if m.result != nil || m.raceWaiting() {
		return
	}
	if r == ' ' && m.eng.TypedWord() != "" {
		m.typedHistory = append(m.typedHistory, m.eng.TypedWord())
	}
	m.eng.Type(r)
	m.offerProgress()
}

func (m *Model) handlePoll() (tea.Model, tea.Cmd) {
	_, fired := m.eng.Poll()
	if fired {
		// onComplete already ran inside the engine.
		return m, nil
	}
	if m.eng.State() == engine.Complete {
		return m, nil
	}
	return m, pollTick()
}

func (m *Model) handleRaceEvent(env race.Envelope) (tea.Model, tea.Cmd) {
	switch env.Type {
	case race.MsgRoomState:
		if env.Room == nil {
			break
		}
		prev := m.roomState
		m.roomState = env.Room
		if env.Room.Status == model.RoomRunning && env.Room.StartTime != nil &&
			(prev == nil || prev.Status != model.RoomRunning) {
			m.eng.Anchor(*env.Room.StartTime)
		}
		if env.Room.Status == model.RoomFinished {
			m.raceOver = true
		}
	case race.MsgRoomDeleted:
		m.notice = "room was closed by the host"
		m.raceOver = true
		return m, tea.Quit
	case race.MsgError:
		m.notice = env.Error
	}
	return m, m.listenRace()
}

func (m *Model) offerProgress() {
	if m.opts.Race == nil || m.eng.State() != engine.Running {
		return
	}
	m.opts.Race.OfferProgress(race.Update{
		Status:   model.PlayerTyping,
		WPM:      m.eng.LiveWPM(),
		Accuracy: liveAccuracy(m.eng.Stats()),
		Progress: m.eng.Progress(),
	})
}

func liveAccuracy(cs model.CharStats) int {
	total := cs.Total()
	if total == 0 {
		return 0
	}
	errors := cs.Incorrect + cs.Extra + cs.Missed
	acc := int(float64(total-errors)/float64(total)*100 + 0.5)
	if acc < 0 {
		acc = 0
	}
	return acc
}

// onComplete runs inside the engine when the session ends: persist the
// result, evaluate achievements, and report completion to the race.
func (m *Model) onComplete(result model.ScoreResult) {
	m.result = &result

	if m.opts.Race != nil {
		if err := m.opts.Race.ReportFinished(race.Update{
			WPM:      result.WPM,
			Accuracy: result.Accuracy,
		}); err != nil {
			logErrf("failed to report finish: %v\n", err)
		}
		if m.roomState != nil && m.roomState.HostID == m.opts.SelfID {
			if err := m.opts.Race.ReportTimeout(); err != nil {
				logErrf("failed to report timeout: %v\n", err)
			}
		}
	}

	if m.store == nil {
		return
	}
	ctx := context.Background()
	item := model.HistoryItem{ScoreResult: result, Timestamp: time.Now()}
	if _, err := m.store.InsertResult(ctx, item); err != nil {
		logErrf("failed to save result: %v\n", err)
		return
	}
	count, err := m.store.CountResults(ctx)
	if err != nil {
		logErrf("failed to count results: %v\n", err)
		return
	}
	unlocked, err := m.store.Achievements(ctx)
	if err != nil {
		logErrf("failed to load achievements: %v\n", err)
		return
	}
	fresh := achieve.Evaluate(result, count, unlocked)
	if len(fresh) > 0 {
		if err := m.store.UnlockAchievements(ctx, fresh, time.Now()); err != nil {
			logErrf("failed to unlock achievements: %v\n", err)
		}
		m.unlocked = fresh
	}
}

func (m *Model) restart() {
	m.result = nil
	m.unlocked = nil
	m.typedHistory = nil
	m.eng.Reset(m.sessionWords())
}

func (m *Model) quit() tea.Cmd {
	if m.opts.Race != nil && !m.raceOver {
		if err := m.opts.Race.LeaveRoom(); err != nil {
			// The server notices the disconnect either way.
			_ = err
		}
	}
	return tea.Quit
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.result != nil {
		return m.viewResult()
	}
	return m.viewSession()
}

func (m *Model) viewSession() string {
	stream := buildWordStream(m.eng.Words(), m.typedHistory, m.eng.WordIndex(), m.eng.TypedWord())
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(stream)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(stream, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)

	var sections []string
	if header := m.renderHeader(); header != "" {
		sections = append(sections, header)
	}
	sections = append(sections, content)
	if peers := m.renderPeers(); peers != "" {
		sections = append(sections, peers)
	}
	body := strings.Join(sections, "\n\n")

	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	if m.opts.Race == nil || m.roomState == nil {
		return ""
	}
	switch m.roomState.Status {
	case model.RoomWaiting:
		line := fmt.Sprintf("Room %s · waiting for the host to start (%d players)",
			m.roomState.RoomID, len(m.roomState.Players))
		if m.roomState.HostID == m.opts.SelfID {
			line += " · press s to start"
		}
		return headerStyle.Render(line)
	case model.RoomFinished:
		return headerStyle.Render("Race finished")
	default:
		return headerStyle.Render("Room " + m.roomState.RoomID)
	}
}

func (m *Model) renderPeers() string {
	if m.roomState == nil {
		return ""
	}
	ids := make([]string, 0, len(m.roomState.Players))
	for id := range m.roomState.Players {
		if id != m.opts.SelfID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		p := m.roomState.Players[id]
		bar := progressBar(p.Progress, 20)
		lines = append(lines, footerStyle.Render(
			fmt.Sprintf("%-12s %s %3d%% · %d wpm", p.DisplayName, bar, p.Progress, p.WPM)))
	}
	return strings.Join(lines, "\n")
}

func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func (m *Model) renderFooter() string {
	remaining := int(m.eng.Remaining().Round(time.Second).Seconds())
	segments := []string{
		fmt.Sprintf("%ds", remaining),
		fmt.Sprintf("%d wpm", m.eng.LiveWPM()),
		fmt.Sprintf("%d%%", liveAccuracy(m.eng.Stats())),
		fmt.Sprintf("%d%% done", m.eng.Progress()),
	}
	if m.notice != "" {
		segments = append(segments, noticeStyle.Render(m.notice))
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

func (m *Model) viewResult() string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = statsPkg.RenderResult(&b, *m.result)
	for _, id := range m.unlocked {
		if a, ok := achieve.ByID(id); ok {
			fmt.Fprintf(&b, "\nAchievement unlocked: %s (%s)", a.Name, a.Description)
		}
	}
	if m.opts.Race != nil && m.roomState != nil {
		b.WriteString("\n\n")
		b.WriteString(m.renderStandings())
		b.WriteString("\n\nPress esc to leave")
	} else {
		b.WriteString("\n\nPress enter to go again, esc to quit")
	}
	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderStandings ranks players by wpm for the post-race screen.
func (m *Model) renderStandings() string {
	players := make([]model.PlayerProgress, 0, len(m.roomState.Players))
	for _, p := range m.roomState.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].WPM != players[j].WPM {
			return players[i].WPM > players[j].WPM
		}
		return players[i].DisplayName < players[j].DisplayName
	})
	lines := make([]string, 0, len(players))
	for i, p := range players {
		name := p.DisplayName
		if p.ID == m.opts.SelfID {
			name += " (you)"
		}
		lines = append(lines, fmt.Sprintf("%d. %-16s %d wpm · %d%%", i+1, name, p.WPM, p.Accuracy))
	}
	return strings.Join(lines, "\n")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
