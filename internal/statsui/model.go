// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hello97-gg/hallotype/internal/achieve"
	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/stats"
	"github.com/hello97-gg/hallotype/internal/store"
)

const (
	tabOverview = iota
	tabHistory
	tabAchievements
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	unlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store

	history      []model.HistoryItem
	achievements map[string]time.Time
	equipped     string
	errMsg       string

	tabs      []string
	activeTab int
	overview  viewport.Model
	rows      table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store) *Model {
	m := &Model{
		store: st,
		tabs:  []string{"Overview", "History", "Achievements"},
	}
	m.initTable()
	m.overview = viewport.New(80, 20)
	m.refresh()
	return m
}

func (m *Model) initTable() {
	columns := []table.Column{
		{Title: "When", Width: 18},
		{Title: "WPM", Width: 5},
		{Title: "Raw", Width: 5},
		{Title: "Acc", Width: 5},
		{Title: "Cons", Width: 5},
		{Title: "Time", Width: 6},
		{Title: "Tier", Width: 8},
	}
	m.rows = table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
}

func (m *Model) refresh() {
	ctx := context.Background()
	history, err := m.store.ListHistory(ctx, 0)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load history: %v", err)
		return
	}
	m.history = history

	unlocked, err := m.store.Achievements(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load achievements: %v", err)
		return
	}
	m.achievements = unlocked

	equipped, err := m.store.EquippedBadge(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load equipped badge: %v", err)
		return
	}
	m.equipped = equipped

	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = stats.RenderHistory(&buf, history, 10)
	m.overview.SetContent(buf.String())

	rows := make([]table.Row, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		it := history[i]
		rows = append(rows, table.Row{
			it.Timestamp.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(it.WPM),
			strconv.Itoa(it.RawWPM),
			strconv.Itoa(it.Accuracy) + "%",
			strconv.Itoa(it.Consistency) + "%",
			strconv.Itoa(it.TimeLimit) + "s",
			string(it.Tier),
		})
	}
	m.rows.SetRows(rows)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overview.Width = msg.Width - 2
		m.overview.Height = msg.Height - 5
		m.rows.SetHeight(max(3, msg.Height-6))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			return m, nil
		case "shift+tab", "left", "h":
			m.activeTab = (m.activeTab + len(m.tabs) - 1) % len(m.tabs)
			return m, nil
		}
	}
	var cmd tea.Cmd
	switch m.activeTab {
	case tabOverview:
		m.overview, cmd = m.overview.Update(msg)
	case tabHistory:
		m.rows, cmd = m.rows.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderNav())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	switch m.activeTab {
	case tabOverview:
		b.WriteString(m.overview.View())
	case tabHistory:
		if len(m.history) == 0 {
			b.WriteString(headerStyle.Render("No sessions recorded yet."))
		} else {
			b.WriteString(m.rows.View())
		}
	case tabAchievements:
		b.WriteString(m.renderAchievements())
	}
	return b.String()
}

func (m *Model) renderNav() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderAchievements() string {
	var b strings.Builder
	for _, a := range achieve.Catalog {
		at, ok := m.achievements[a.ID]
		line := fmt.Sprintf("%-22s %s", a.Name, a.Description)
		if ok {
			line += "  (" + at.Local().Format("2006-01-02") + ")"
			if a.ID == m.equipped {
				line += "  [equipped]"
			}
			b.WriteString(unlockedStyle.Render(line))
		} else {
			b.WriteString(lockedStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
