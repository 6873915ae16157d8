// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

const (
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40

	// DefaultCapacity is how many entries are kept when none is given.
	DefaultCapacity = 500
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state. Entries are pushed in by the
// app as they arrive on the log broker; the oldest are dropped once the
// buffer is full.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	capacity int
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay keeping up to capacity entries.
func New(capacity int) Model {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return Model{minLevel: log.LevelDebug, capacity: capacity}
}

// Append records a log entry.
func (m Model) Append(entry string) Model {
	m.entries = append(m.entries, strings.TrimSuffix(entry, "\n"))
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append([]string(nil), m.entries[over:]...)
	}
	if m.visible {
		m = m.refresh()
	}
	return m
}

// Len returns how many entries are buffered.
func (m Model) Len() int {
	return len(m.entries)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle shows or hides the overlay.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m = m.refresh()
		m.viewport.GotoBottom()
	}
	return m
}

// SetSize updates the overlay's knowledge of the screen size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.refresh()
}

// Update handles keys while visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "c":
		m.entries = nil
		return m.refresh(), nil
	case "d":
		m.minLevel = log.LevelDebug
		return m.refresh(), nil
	case "i":
		m.minLevel = log.LevelInfo
		return m.refresh(), nil
	case "w":
		m.minLevel = log.LevelWarn
		return m.refresh(), nil
	case "e":
		m.minLevel = log.LevelError
		return m.refresh(), nil
	case "j", "down":
		m.viewport.ScrollDown(1)
	case "k", "up":
		m.viewport.ScrollUp(1)
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+x", "esc":
		m.visible = false
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, nil
}

func (m Model) refresh() Model {
	if m.width == 0 || m.height == 0 {
		return m
	}
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	atBottom := m.viewport.AtBottom()
	m.viewport = viewport.New(m.contentWidth(), height)
	m.viewport.SetContent(m.content())
	if atBottom {
		m.viewport.GotoBottom()
	}
	return m
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

func (m Model) content() string {
	width := m.contentWidth()
	var lines []string
	for _, entry := range m.entries {
		if levelOf(entry) >= m.minLevel {
			lines = append(lines, colorize(entry, width))
		}
	}
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

// View renders the overlay box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	boxWidth := m.boxWidth()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1)
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", boxWidth))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Logs"))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(b.String())
}

// Overlay renders the log overlay centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.View(), bg)
}

// levelOf reads the level tag written by the log package. Unknown entries
// count as errors so they are never hidden.
func levelOf(entry string) log.Level {
	switch {
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn
	}
	return log.LevelError
}

func colorize(entry string, maxWidth int) string {
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth-3, "...")
	}
	var color lipgloss.TerminalColor
	switch levelOf(entry) {
	case log.LevelDebug:
		color = styles.TextMutedColor
	case log.LevelInfo:
		color = styles.ToastBorderInfoColor
	case log.LevelWarn:
		color = styles.StatusWarningColor
	default:
		color = styles.StatusErrorColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, opt := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if m.minLevel == opt.level {
			parts = append(parts, active.Render(opt.label))
		} else {
			parts = append(parts, hint.Render(opt.label))
		}
	}
	return strings.Join(parts, "  ")
}
