// Package details contains the issue detail view component.
package details

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/markdown"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// Layout constants for the two-column view.
const (
	minTwoColumnWidth = 90
	metadataColWidth  = 30
	columnGap         = 2
)

// Messages emitted by the details view for the controller to handle.

// CloseMsg returns to the board or list.
type CloseMsg struct{}

// EditMsg opens the edit form for the issue.
type EditMsg struct{ IID int }

// MoveMsg opens the move menu for the issue.
type MoveMsg struct{ IID int }

// DeleteMsg asks to close and remove the issue.
type DeleteMsg struct{ IID int }

// CopyURLMsg asks to copy the issue's web URL.
type CopyURLMsg struct{ URL string }

// Model holds the detail view state.
type Model struct {
	issue         gitlab.Issue
	viewport      viewport.Model
	mdRenderer    *markdown.Renderer
	markdownStyle string
	formatTime    func(time.Time) string
	pending       bool
	width         int
	height        int
	ready         bool
}

// New creates a detail view for issue.
func New(issue gitlab.Issue) Model {
	return Model{
		issue:         issue,
		markdownStyle: "dark",
		formatTime:    func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}
}

// Issue returns the issue shown.
func (m Model) Issue() gitlab.Issue {
	return m.issue
}

// SetIssue swaps in a newer copy of the issue, keeping the scroll position.
func (m Model) SetIssue(issue gitlab.Issue) Model {
	m.issue = issue
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m
}

// SetMarkdownStyle sets the markdown rendering style ("dark" or "light").
func (m Model) SetMarkdownStyle(style string) Model {
	m.markdownStyle = style
	m.mdRenderer = nil
	return m
}

// SetTimeFormatter controls how timestamps are shown.
func (m Model) SetTimeFormatter(fn func(time.Time) string) Model {
	if fn != nil {
		m.formatTime = fn
	}
	return m
}

// SetPending marks the issue as waiting on GitLab.
func (m Model) SetPending(pending bool) Model {
	m.pending = pending
	return m
}

// SetSize updates dimensions and rebuilds the viewport.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	leftWidth, _ := m.columnWidths()
	if m.mdRenderer == nil || m.mdRenderer.Width() != leftWidth {
		if r, err := markdown.New(leftWidth, m.markdownStyle); err == nil {
			m.mdRenderer = r
		}
	}

	vpHeight := max(height-m.headerHeight(leftWidth)-1, 1)
	if !m.ready {
		m.viewport = viewport.New(leftWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = leftWidth
		m.viewport.Height = vpHeight
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

func (m Model) twoColumns() bool {
	return m.width >= minTwoColumnWidth
}

func (m Model) columnWidths() (left, right int) {
	available := max(m.width, 10)
	if !m.twoColumns() {
		return available, 0
	}
	return available - metadataColWidth - columnGap, metadataColWidth
}

func (m Model) headerHeight(width int) int {
	return strings.Count(m.renderHeader(width), "\n") + 2
}

// Update handles scrolling and action keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	iid := m.issue.IID
	switch {
	case key.Matches(keyMsg, keys.Common.Escape), key.Matches(keyMsg, keys.Common.Enter):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(keyMsg, keys.Kanban.Edit):
		return m, func() tea.Msg { return EditMsg{IID: iid} }
	case key.Matches(keyMsg, keys.Kanban.Move):
		return m, func() tea.Msg { return MoveMsg{IID: iid} }
	case key.Matches(keyMsg, keys.Kanban.Delete):
		return m, func() tea.Msg { return DeleteMsg{IID: iid} }
	case key.Matches(keyMsg, keys.Kanban.Yank):
		url := m.issue.WebURL
		return m, func() tea.Msg { return CopyURLMsg{URL: url} }
	case key.Matches(keyMsg, keys.Common.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(keyMsg, keys.Common.Up):
		m.viewport.ScrollUp(1)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the header, description and metadata.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	leftWidth, rightWidth := m.columnWidths()
	header := m.renderHeader(leftWidth)

	body := m.viewport.View()
	if m.twoColumns() {
		meta := lipgloss.NewStyle().Width(rightWidth).Render(m.renderMetadata(rightWidth))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, strings.Repeat(" ", columnGap), meta)
	}

	footer := styles.MutedStyle.Render("esc back · e edit · m move · d close · y copy url")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
}

func (m Model) renderHeader(width int) string {
	col := kanban.Classify(m.issue)
	id := styles.SecondaryStyle.Render(fmt.Sprintf("#%d", m.issue.IID))
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).
		Render(wordwrap.String(m.issue.Title, max(width-8, 10)))
	line := id + " " + title
	if m.pending {
		line = styles.PendingStyle.Render("⧗ ") + line
	}

	state := lipgloss.NewStyle().Foreground(styles.StateColor(m.issue.Closed())).Render(string(m.issue.State))
	sub := state + styles.MutedStyle.Render(" · "+col.Title())
	if !m.twoColumns() {
		sub += styles.MutedStyle.Render(" · opened by @" + m.issue.Author.Username)
		if labels := kanban.StripMarkers(m.issue.Labels); len(labels) > 0 {
			sub += "\n" + styles.FormatLabels(labels, width)
		}
	}
	return line + "\n" + sub
}

func (m Model) renderContent() string {
	leftWidth, _ := m.columnWidths()
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(m.issue.Description); err == nil {
			return out
		}
	}
	if strings.TrimSpace(m.issue.Description) == "" {
		return styles.MutedStyle.Italic(true).Render("No description.")
	}
	return wordwrap.String(m.issue.Description, leftWidth)
}

func (m Model) renderMetadata(width int) string {
	label := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	var b strings.Builder
	row := func(name, value string) {
		b.WriteString(label.Render(name))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(value, width))
		b.WriteString("\n\n")
	}

	row("Author", "@"+m.issue.Author.Username)
	if len(m.issue.Assignees) > 0 {
		names := make([]string, len(m.issue.Assignees))
		for i, a := range m.issue.Assignees {
			names[i] = "@" + a.Username
		}
		row("Assignees", strings.Join(names, ", "))
	}
	if labels := kanban.StripMarkers(m.issue.Labels); len(labels) > 0 {
		row("Labels", strings.Join(labels, ", "))
	}
	row("Created", m.formatTime(m.issue.CreatedAt))
	row("Updated", m.formatTime(m.issue.UpdatedAt))
	if m.issue.WebURL != "" {
		row("URL", m.issue.WebURL)
	}
	return strings.TrimRight(b.String(), "\n")
}
