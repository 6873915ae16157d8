package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShowAndHide(t *testing.T) {
	m := New(time.Second)
	require.False(t, m.Visible())
	require.Empty(t, m.View())

	m, cmd := m.Show("Moved #5 to Doing", StyleSuccess)
	require.NotNil(t, cmd)
	require.True(t, m.Visible())
	require.Contains(t, m.View(), "Moved #5 to Doing")
	require.Equal(t, StyleSuccess, m.Style())

	m = m.Hide()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestShow_ReplacesExisting(t *testing.T) {
	m, _ := New(time.Second).Show("First", StyleSuccess)
	m, _ = m.Show("Second", StyleError)

	require.Equal(t, "Second", m.Message())
	require.NotContains(t, m.View(), "First")
}

func TestUpdate_StaleDismissIsIgnored(t *testing.T) {
	m, _ := New(time.Second).Show("First", StyleInfo)
	stale := DismissMsg{Seq: m.seq}
	m, _ = m.Show("Second", StyleWarn)

	m = m.Update(stale)
	require.True(t, m.Visible(), "dismissal of the first toast must not hide the second")

	m = m.Update(DismissMsg{Seq: m.seq})
	require.False(t, m.Visible())
}

func TestScheduleDismiss_CarriesSequence(t *testing.T) {
	msg := ScheduleDismiss(7, time.Millisecond)()
	require.Equal(t, DismissMsg{Seq: 7}, msg)
}

func TestView_Styles(t *testing.T) {
	tests := []struct {
		style  Style
		marker string
	}{
		{StyleSuccess, "✓"},
		{StyleError, "✗"},
		{StyleInfo, "ℹ"},
		{StyleWarn, "!"},
	}
	for _, tt := range tests {
		m, _ := New(0).Show("msg", tt.style)
		require.Contains(t, m.View(), tt.marker)
	}
}

func TestOverlay_BottomCenter(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 40)+"\n", 9) + strings.Repeat(".", 40)
	m, _ := New(0).Show("saved", StyleSuccess)

	lines := strings.Split(m.Overlay(bg, 40, 10), "\n")
	require.Len(t, lines, 10)
	require.Contains(t, lines[7], "saved")
	require.Equal(t, strings.Repeat(".", 40), lines[0])

	require.Equal(t, bg, New(0).Overlay(bg, 40, 10), "hidden toast leaves the view alone")
}
