package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

func newTestModel(t *testing.T, names ...string) (tuiModel, *card.MemoryKV) {
	t.Helper()
	kv := card.NewMemoryKV()
	store := card.NewStore(kv, card.StorageKey, zap.NewNop())
	for _, name := range names {
		store.Add(context.Background(), name, "100")
	}
	s := session.New(store, zap.NewNop())
	return newTUIModel(context.Background(), s, nil, zap.NewNop()), kv
}

func send(t *testing.T, m tuiModel, msgs ...tea.Msg) tuiModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(tuiModel)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTUIRequiresSelection(t *testing.T) {
	m, _ := newTestModel(t, "Head")

	m = send(t, m, runes("5"))
	assert.Equal(t, "press tab to select a card", m.notice)
	assert.Equal(t, "0", m.session.Display())

	m = send(t, m,
		tea.KeyMsg{Type: tea.KeyTab},
		runes("-"), runes("3"), runes("0"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Empty(t, m.notice)

	c, ok := m.session.Store().Selected()
	require.True(t, ok)
	assert.Equal(t, 70.0, c.Current)
	assert.Equal(t, "70", m.session.Display())
}

func TestTUICursor(t *testing.T) {
	m, _ := newTestModel(t, "Head", "Torso")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	c, ok := m.session.Store().Selected()
	require.True(t, ok)
	assert.Equal(t, "Torso", c.Name)

	m = send(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)
}

func TestTUIEditingKeys(t *testing.T) {
	m, _ := newTestModel(t, "Head")

	m = send(t, m,
		tea.KeyMsg{Type: tea.KeyTab},
		runes("*"), runes("2"),
	)
	assert.Equal(t, "100 × 2", m.session.Display())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "100 ×", m.session.Display())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "100", m.session.Display())
}

func space() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

func TestTUISelectionMode(t *testing.T) {
	m, _ := newTestModel(t, "Head", "Torso", "Leg")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, m.session.Active())

	m = send(t, m, space(), runes("j"), space())
	assert.Len(t, m.marked, 2)
	assert.False(t, m.session.Active(), "marking leaves the selected card")

	// keypad and selection are locked while cards are marked
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("5"))
	assert.False(t, m.session.Active())
	assert.Equal(t, "0", m.session.Display())

	m = send(t, m, runes("x"))
	assert.Equal(t, 3, m.session.Store().Len(), "first x only asks")
	assert.Contains(t, m.notice, "press x again")

	m = send(t, m, runes("x"))
	assert.Empty(t, m.marked)

	cards := m.session.Store().Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "Leg", cards[0].Name)
	assert.Equal(t, 0, m.cursor)
}

func TestTUISelectionModeEscape(t *testing.T) {
	m, _ := newTestModel(t, "Head")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, space(), runes("5"))
	assert.Equal(t, "0", m.session.Display())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.marked)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("5"))
	assert.Equal(t, "1005", m.session.Display())
}

func TestTUIDeleteNeedsConfirmation(t *testing.T) {
	m, _ := newTestModel(t, "Head", "Torso")

	m = send(t, m, runes("j"), runes("x"))
	assert.Equal(t, 2, m.session.Store().Len())

	// any other key cancels the pending delete
	m = send(t, m, runes("k"), runes("j"), runes("x"))
	assert.Equal(t, 2, m.session.Store().Len())

	m = send(t, m, runes("x"))
	cards := m.session.Store().Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "Head", cards[0].Name)
	assert.Equal(t, 0, m.cursor)
}

func TestTUIReloadsOnChange(t *testing.T) {
	m, kv := newTestModel(t, "Head")

	other := card.NewStore(kv, card.StorageKey, zap.NewNop())
	require.NoError(t, other.Load(context.Background()))
	other.Add(context.Background(), "Torso", "50")

	m = send(t, m, cardsChangedMsg{})
	assert.Equal(t, 2, m.session.Store().Len())
	assert.Contains(t, m.View(), "Torso")
}

func TestTUIWaitForChange(t *testing.T) {
	assert.Nil(t, waitForChange(nil))

	changes := make(chan struct{}, 1)
	changes <- struct{}{}
	assert.Equal(t, cardsChangedMsg{}, waitForChange(changes)())

	close(changes)
	assert.Nil(t, waitForChange(changes)())
}

func TestTUIQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTUIView(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No cards yet")

	m, _ = newTestModel(t, "Head")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view := m.View()
	assert.Contains(t, view, "Head: 100 / 100")
	assert.Contains(t, view, "100%")
}
