package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/turbekoff/staminabot/pkg/calc"
	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

const barWidth = 20

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDA085"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF758C"))
	displayStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Width(barWidth + 10).
			Align(lipgloss.Right)
)

type tuiKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Mark   key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Mark, k.Delete, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var tuiKeys = tuiKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select")),
	Mark:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
	Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type cardsChangedMsg struct{}

type tuiModel struct {
	ctx     context.Context
	session *session.Session
	logger  *zap.Logger
	changes <-chan struct{}

	cursor  int
	marked  map[string]bool
	pending []string
	notice  string

	bars map[card.Level]progress.Model
	help help.Model
	keys tuiKeyMap
}

func newTUIModel(ctx context.Context, s *session.Session, changes <-chan struct{}, logger *zap.Logger) tuiModel {
	bar := func(from, to string) progress.Model {
		return progress.New(
			progress.WithGradient(from, to),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		)
	}

	return tuiModel{
		ctx:     ctx,
		session: s,
		logger:  logger,
		changes: changes,
		marked:  make(map[string]bool),
		bars: map[card.Level]progress.Model{
			card.LevelHigh: bar("#26D0CE", "#1A2980"),
			card.LevelMid:  bar("#F6D365", "#FDA085"),
			card.LevelLow:  bar("#FF758C", "#FF7EB3"),
		},
		help: help.New(),
		keys: tuiKeys,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return cardsChangedMsg{}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsChangedMsg:
		if err := m.session.Reload(m.ctx); err != nil {
			m.logger.Error("failed to reload cards", zap.Error(err))
			m.notice = "reload failed"
		}
		m.clampCursor()
		m.dropStaleMarks()
		m.pending = nil
		return m, waitForChange(m.changes)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := m.session.Store().Cards()
	confirm := m.pending
	m.pending = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(cards)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(cards) == 0 || len(m.marked) > 0 {
			return m, nil
		}
		if err := m.session.Select(cards[m.cursor].ID); err != nil {
			m.notice = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.Mark):
		if len(cards) == 0 {
			return m, nil
		}
		id := cards[m.cursor].ID
		switch {
		case m.marked[id]:
			delete(m.marked, id)
		case len(m.marked) == 0:
			m.session.Deselect()
			fallthrough
		default:
			m.marked[id] = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		ids := m.deleteTargets(cards)
		if len(ids) == 0 {
			return m, nil
		}
		if !slices.Equal(ids, confirm) {
			m.pending = ids
			m.notice = fmt.Sprintf("delete %d card(s)? press x again to confirm", len(ids))
			return m, nil
		}
		m.deleteCards(ids)
		return m, nil
	}

	if len(m.marked) > 0 {
		if msg.Type == tea.KeyEsc {
			clear(m.marked)
		}
		return m, nil
	}

	b, ok := session.KeyButton(msg.String())
	if !ok {
		return m, nil
	}
	if err := m.session.Press(m.ctx, b); err != nil {
		if errors.Is(err, session.ErrNoSelection) {
			m.notice = "press tab to select a card"
			return m, nil
		}
		m.logger.Error("failed to press button", zap.Stringer("button", b), zap.Error(err))
		m.notice = err.Error()
	}
	return m, nil
}

// deleteTargets is the marked cards, or the card under the cursor when
// nothing is marked.
func (m *tuiModel) deleteTargets(cards []card.Card) []string {
	if len(m.marked) == 0 {
		if len(cards) == 0 {
			return nil
		}
		return []string{cards[m.cursor].ID}
	}

	var ids []string
	for _, c := range cards {
		if m.marked[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (m *tuiModel) deleteCards(ids []string) {
	if err := m.session.DeleteMany(m.ctx, ids); err != nil {
		m.notice = err.Error()
		return
	}
	clear(m.marked)
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	n := m.session.Store().Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) dropStaleMarks() {
	for id := range m.marked {
		if _, ok := m.session.Store().Get(id); !ok {
			delete(m.marked, id)
		}
	}
}

func (m tuiModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Stamina"))
	sb.WriteString("\n\n")

	cards := m.session.Store().Cards()
	if len(cards) == 0 {
		sb.WriteString(dimStyle.Render("No cards yet. Add some with `stamina cards add` or `stamina cards preset`."))
		sb.WriteString("\n")
	}

	selectedID := m.session.Store().SelectedID()
	for i, c := range cards {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		mark := "○"
		if c.ID == selectedID {
			mark = "●"
		}
		if m.marked[c.ID] {
			mark = "✕"
		}

		line := fmt.Sprintf("%s%s %-12s %s %3d%%  %s / %s",
			cursor, mark, c.Name,
			m.bars[c.Level()].ViewAs(float64(c.Percent())/100),
			c.Percent(), calc.Format(c.Current), calc.Format(c.Max),
		)
		switch {
		case m.marked[c.ID]:
			line = markedStyle.Render(line)
		case c.ID == selectedID:
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.session.Status())
	sb.WriteString("\n")
	sb.WriteString(displayStyle.Render(m.session.Display()))
	sb.WriteString("\n")

	if len(m.marked) > 0 {
		sb.WriteString(markedStyle.Render(fmt.Sprintf("%d marked, x deletes, esc cancels", len(m.marked))))
		sb.WriteString("\n")
	}
	if m.notice != "" {
		sb.WriteString(noticeStyle.Render(m.notice))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
