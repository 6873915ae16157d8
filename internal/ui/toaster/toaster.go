// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is used when New is given a non-positive duration.
const DefaultDuration = 3 * time.Second

// Model holds the toaster state. Every Show bumps a sequence number so a
// dismissal scheduled for an older toast never hides a newer one.
type Model struct {
	message  string
	style    Style
	visible  bool
	seq      int
	duration time.Duration
}

// New creates a toaster whose toasts disappear after d. Error toasts stay
// twice as long.
func New(d time.Duration) Model {
	if d <= 0 {
		d = DefaultDuration
	}
	return Model{duration: d}
}

// SetDuration changes the display time of later toasts.
func (m Model) SetDuration(d time.Duration) Model {
	if d > 0 {
		m.duration = d
	}
	return m
}

// Show displays message and returns the command that will dismiss it.
func (m Model) Show(message string, style Style) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.seq++

	d := m.duration
	if style == StyleError {
		d *= 2
	}
	return m, ScheduleDismiss(m.seq, d)
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message is the text of the visible toast.
func (m Model) Message() string {
	return m.message
}

// Style is the style of the visible toast.
func (m Model) Style() Style {
	return m.style
}

// Update hides the toast when its own dismissal fires.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.Seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var content string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "✗ " + m.message + styles.MutedStyle.Render("  esc")
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		content = "ℹ " + m.message
	case StyleWarn:
		style = style.BorderForeground(styles.ToastBorderWarnColor)
		content = "! " + m.message
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = "✓ " + m.message
	}
	return style.Render(content)
}

// Overlay renders the toast at the bottom center of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast shown with sequence number Seq.
type DismissMsg struct {
	Seq int
}

// ScheduleDismiss returns a command that dismisses toast seq after d.
func ScheduleDismiss(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{Seq: seq}
	})
}
