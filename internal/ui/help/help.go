// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Mode selects which bindings are listed.
type Mode int

const (
	ModeBoard Mode = iota
	ModeList
	ModeProjects
)

// Section is a titled column of bindings.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Model holds the help view state.
type Model struct {
	mode   Mode
	width  int
	height int
}

// New creates a help view for mode.
func New(mode Mode) Model {
	return Model{mode: mode}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Sections returns the columns shown for the current mode.
func (m Model) Sections() []Section {
	general := Section{Title: "General", Bindings: []key.Binding{
		keys.Common.Help, keys.Common.Log, keys.Common.Escape, keys.Common.Quit,
	}}
	switch m.mode {
	case ModeList:
		return []Section{
			{Title: "Navigation", Bindings: []key.Binding{keys.Common.Up, keys.Common.Down, keys.List.ReorderUp, keys.List.ReorderDown}},
			{Title: "Query", Bindings: []key.Binding{keys.List.Search, keys.List.Filter, keys.List.Sort}},
			{Title: "Actions", Bindings: []key.Binding{
				keys.Kanban.Details, keys.Kanban.Move, keys.Kanban.New, keys.Kanban.Edit, keys.Kanban.Delete,
				keys.Kanban.Refresh, keys.Kanban.ToggleView, keys.Kanban.Projects,
			}},
			general,
		}
	case ModeProjects:
		return []Section{
			{Title: "Navigation", Bindings: []key.Binding{keys.Common.Up, keys.Common.Down}},
			{Title: "Actions", Bindings: []key.Binding{keys.Projects.Open, keys.Projects.Filter, keys.Projects.Refresh}},
			general,
		}
	}
	return []Section{
		{Title: "Navigation", Bindings: []key.Binding{keys.Common.Left, keys.Common.Right, keys.Common.Up, keys.Common.Down}},
		{Title: "Cards", Bindings: []key.Binding{
			keys.Kanban.Grab, keys.Kanban.Move, keys.Kanban.Details, keys.Kanban.New, keys.Kanban.Edit, keys.Kanban.Delete, keys.Kanban.Yank,
		}},
		{Title: "Board", Bindings: []key.Binding{keys.Kanban.Refresh, keys.Kanban.ToggleView, keys.Kanban.Projects, keys.Kanban.Status}},
		general,
	}
}

// View renders the help overlay on a blank screen.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	box := m.renderContent()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	sections := m.Sections()
	cols := make([]string, len(sections))
	for i, s := range sections {
		var b strings.Builder
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, binding := range s.Bindings {
			b.WriteString(renderBinding(binding))
		}
		cols[i] = b.String()
		if i < len(sections)-1 {
			cols[i] = columnStyle.Render(cols[i])
		}
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	boxWidth := lipgloss.Width(columns) + 4
	body := contentStyle.Render(columns + "\n" + footerStyle.Render("Press ? or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}
