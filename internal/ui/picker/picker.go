// Package picker provides a small option menu shown as an overlay. The board
// uses it for the per-card move menu.
package picker

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// Option represents a picker option with label and value.
type Option struct {
	Label string
	Value string
	Color lipgloss.TerminalColor // optional label color
}

// SelectMsg is sent when an option is chosen with enter.
type SelectMsg struct {
	Option Option
}

// CancelMsg is sent when the picker is closed with esc.
type CancelMsg struct{}

// Model holds the picker state.
type Model struct {
	title          string
	options        []Option
	selected       int
	boxWidth       int
	viewportWidth  int
	viewportHeight int
}

// New creates a new picker with the given title and options.
func New(title string, options []Option) Model {
	return Model{title: title, options: options}
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// SetBoxWidth sets the width of the picker box itself.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// Options returns the options in display order.
func (m Model) Options() []Option {
	return m.options
}

// Selected returns the currently highlighted option.
func (m Model) Selected() Option {
	if m.selected >= 0 && m.selected < len(m.options) {
		return m.options[m.selected]
	}
	return Option{}
}

// Update moves the highlight and emits SelectMsg or CancelMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Common.Down), keyMsg.String() == "ctrl+n":
		if m.selected < len(m.options)-1 {
			m.selected++
		}
	case key.Matches(keyMsg, keys.Common.Up), keyMsg.String() == "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(keyMsg, keys.Common.Enter):
		if len(m.options) == 0 {
			return m, nil
		}
		opt := m.Selected()
		return m, func() tea.Msg { return SelectMsg{Option: opt} }
	case key.Matches(keyMsg, keys.Common.Escape):
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, nil
}

// View renders the picker box (without positioning).
func (m Model) View() string {
	width := m.boxWidth
	if width == 0 {
		width = 25
	}

	lines := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		label := lipgloss.NewStyle()
		if opt.Color != nil {
			label = label.Foreground(opt.Color)
		}
		if i == m.selected {
			lines = append(lines, styles.SelectionIndicatorStyle.Render(">")+label.Bold(true).Render(opt.Label))
			continue
		}
		lines = append(lines, " "+label.Render(opt.Label))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.MutedStyle.Render(" nothing to do"))
	}

	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))
	content := lipgloss.NewStyle().PaddingLeft(1).Render(styles.OverlayTitleStyle.Render(m.title)) + "\n" +
		divider + "\n" +
		strings.Join(lines, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content)
}

// Overlay renders the picker centered on top of background.
func (m Model) Overlay(background string) string {
	box := m.View()
	if background == "" {
		return lipgloss.Place(m.viewportWidth, m.viewportHeight, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.Center,
	}, box, background)
}
