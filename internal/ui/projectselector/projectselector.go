// Package projectselector lists the user's GitLab projects and lets one be
// opened. Typing after / narrows the list by name or namespaced path.
package projectselector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// SelectMsg is sent when a project is opened.
type SelectMsg struct {
	Project gitlab.Project
}

// RefreshMsg asks the controller to reload the project list.
type RefreshMsg struct{}

// Model holds the selector state.
type Model struct {
	projects  []gitlab.Project
	visible   []gitlab.Project
	cursor    int
	offset    int
	filter    textinput.Model
	filtering bool
	loading   bool
	err       error
	spinner   spinner.Model
	width     int
	height    int
}

// New creates an empty selector in the loading state.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter projects"
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle
	return Model{filter: ti, loading: true, spinner: sp}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetProjects replaces the list and ends loading.
func (m Model) SetProjects(projects []gitlab.Project) Model {
	m.projects = projects
	m.loading = false
	m.err = nil
	return m.apply()
}

// SetLoading marks the list as being fetched.
func (m Model) SetLoading() Model {
	m.loading = true
	m.err = nil
	return m
}

// SetErr shows a load failure.
func (m Model) SetErr(err error) Model {
	m.loading = false
	m.err = err
	return m
}

// SetSize sets the viewport size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.filter.Width = max(width-6, 10)
	return m.clamp()
}

// Visible returns the projects matching the filter.
func (m Model) Visible() []gitlab.Project {
	return m.visible
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.filtering
}

// Selected returns the project under the cursor.
func (m Model) Selected() (gitlab.Project, bool) {
	if m.cursor < len(m.visible) {
		return m.visible[m.cursor], true
	}
	return gitlab.Project{}, false
}

// Update handles navigation, filtering and selection.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m.open()
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		return m.apply(), nil
	case tea.KeyUp, tea.KeyDown:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m.apply(), cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Common.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Common.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Projects.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, keys.Projects.Open):
		return m.open()
	case key.Matches(msg, keys.Projects.Refresh):
		if m.loading {
			return m, nil
		}
		m = m.SetLoading()
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return RefreshMsg{} })
	}
	return m.clamp(), nil
}

func (m Model) open() (Model, tea.Cmd) {
	p, ok := m.Selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg { return SelectMsg{Project: p} }
}

// apply re-filters, keeping the cursor on the same project when possible.
func (m Model) apply() Model {
	keep := 0
	if p, ok := m.Selected(); ok {
		keep = p.ID
	}
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0:0]
	for _, p := range m.projects {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.PathWithNamespace), needle) {
			m.visible = append(m.visible, p)
		}
	}
	m.cursor = 0
	for i, p := range m.visible {
		if p.ID == keep {
			m.cursor = i
		}
	}
	return m.clamp()
}

func (m Model) rows() int {
	return max((m.height-4)/2, 1)
}

func (m Model) clamp() Model {
	m.cursor = max(min(m.cursor, len(m.visible)-1), 0)
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	return m
}

// View renders the selector.
func (m Model) View() string {
	title := styles.OverlayTitleStyle.Render("Projects")
	var body []string

	switch {
	case m.loading:
		body = append(body, m.spinner.View()+" Loading projects…")
	case m.err != nil:
		body = append(body,
			styles.ErrorStyle.Render("Could not load projects: "+m.err.Error()),
			styles.MutedStyle.Render("press r to retry"))
	default:
		if m.filtering || m.filter.Value() != "" {
			body = append(body, m.filter.View())
		}
		if len(m.visible) == 0 {
			body = append(body, styles.MutedStyle.Italic(true).Render("No projects"))
		}
		end := min(len(m.visible), m.offset+m.rows())
		for i := m.offset; i < end; i++ {
			body = append(body, m.renderRow(m.visible[i], i == m.cursor))
		}
	}

	footer := styles.MutedStyle.Render(fmt.Sprintf("%d projects · enter open · / filter · r reload", len(m.visible)))
	return lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(body, "\n"), "", footer)
}

func (m Model) renderRow(p gitlab.Project, selected bool) string {
	prefix := "  "
	nameStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render("> ")
		nameStyle = nameStyle.Bold(true)
	}
	width := max(m.width-4, 10)
	line := prefix + nameStyle.Render(styles.Truncate(p.Name, width/2)) + " " +
		styles.SecondaryStyle.Render(styles.Truncate(p.PathWithNamespace, width/2))
	desc := "  " + styles.MutedStyle.Render(styles.Truncate(p.Description, width))
	return line + "\n" + desc
}
