package logoverlay

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func withEntries() Model {
	return New(10).SetSize(120, 40).
		Append("2026-01-02T10:00:00 [DEBUG] [drag] drag start iid=1\n").
		Append("2026-01-02T10:00:01 [INFO] [gitlab] issues loaded count=8\n").
		Append("2026-01-02T10:00:02 [WARN] [watcher] config reload skipped\n").
		Append("2026-01-02T10:00:03 [ERROR] [gitlab] update failed status=500\n")
}

func TestHiddenByDefault(t *testing.T) {
	m := withEntries()
	require.False(t, m.Visible())
	require.Equal(t, "bg", m.Overlay("bg"))

	m, cmd := m.Update(runes("c"))
	require.Nil(t, cmd)
	require.Equal(t, 4, m.Len(), "keys are ignored while hidden")
}

func TestShowsEntriesAndFilters(t *testing.T) {
	m := withEntries().Toggle()
	view := ansi.Strip(m.View())
	require.Contains(t, view, "drag start iid=1")
	require.Contains(t, view, "update failed")

	m, _ = m.Update(runes("w"))
	view = ansi.Strip(m.View())
	require.NotContains(t, view, "drag start")
	require.NotContains(t, view, "issues loaded")
	require.Contains(t, view, "config reload skipped")

	m, _ = m.Update(runes("e"))
	require.NotContains(t, ansi.Strip(m.View()), "config reload skipped")
}

func TestClear(t *testing.T) {
	m := withEntries().Toggle()
	m, _ = m.Update(runes("c"))
	require.Zero(t, m.Len())
	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestCapacityDropsOldest(t *testing.T) {
	m := New(3)
	for i := range 5 {
		m = m.Append(fmt.Sprintf("[INFO] [ui] entry %d", i))
	}
	require.Equal(t, 3, m.Len())

	m = m.SetSize(100, 30).Toggle()
	view := ansi.Strip(m.View())
	require.NotContains(t, view, "entry 1")
	require.Contains(t, view, "entry 4")
}

func TestCloseKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlX}} {
		m := withEntries().Toggle()
		m, cmd := m.Update(k)
		require.False(t, m.Visible())
		require.Equal(t, CloseMsg{}, cmd())
	}
}
