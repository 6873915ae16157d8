// Package issueform is the create and edit form for a single issue.
//
// The form never talks to GitLab. On ctrl+s it emits a SubmitMsg carrying
// ready-to-send options; on esc it emits CancelMsg.
package issueform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/journal"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// MaxTitleLength is GitLab's limit on issue titles, in characters.
const MaxTitleLength = 255

// SubmitMsg carries the form result. IID is zero for a new issue, in which
// case Create is set; otherwise Edit holds only the changed fields.
type SubmitMsg struct {
	IID    int
	Create gitlab.CreateIssueOptions
	Edit   gitlab.UpdateIssueOptions
}

// CancelMsg is sent when the form is dismissed.
type CancelMsg struct{}

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldLabels
	fieldCount
)

// Model is the form state.
type Model struct {
	original *gitlab.Issue
	column   kanban.Column
	title    textinput.Model
	desc     textarea.Model
	labels   textinput.Model
	focus    field
	err      string
	width    int
	height   int
}

// NewCreate opens an empty form for an issue that will land in column.
func NewCreate(column kanban.Column) Model {
	return newModel(nil, column)
}

// NewEdit opens the form prefilled from issue. Column markers are kept out
// of the label field and restored on submit.
func NewEdit(issue gitlab.Issue) Model {
	return newModel(&issue, kanban.Classify(issue))
}

func newModel(issue *gitlab.Issue, column kanban.Column) Model {
	title := textinput.New()
	title.Placeholder = "Issue title"
	title.CharLimit = MaxTitleLength
	title.Prompt = ""

	desc := textarea.New()
	desc.Placeholder = "Markdown description"
	desc.ShowLineNumbers = false
	desc.Prompt = ""
	desc.CharLimit = 0
	desc.SetHeight(6)

	labels := textinput.New()
	labels.Placeholder = "bug, frontend"
	labels.Prompt = ""

	if issue != nil {
		title.SetValue(issue.Title)
		desc.SetValue(issue.Description)
		labels.SetValue(strings.Join(kanban.StripMarkers(issue.Labels), ", "))
	}
	title.Focus()

	m := Model{original: issue, column: column, title: title, desc: desc, labels: labels}
	return m.validate()
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Editing reports whether the form edits an existing issue.
func (m Model) Editing() bool {
	return m.original != nil
}

// Err returns the current validation error, if any.
func (m Model) Err() string {
	return m.err
}

// SetSize sets the screen size the form is centered in.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	inner := m.boxWidth() - 4
	m.title.Width = inner
	m.labels.Width = inner
	m.desc.SetWidth(inner)
	return m
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, 72), 30)
}

// Update routes keys to the focused field.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	switch {
	case key.Matches(keyMsg, keys.Form.Cancel):
		return m, func() tea.Msg { return CancelMsg{} }
	case key.Matches(keyMsg, keys.Form.Submit):
		return m.submit()
	case key.Matches(keyMsg, keys.Form.Next):
		return m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(keyMsg, keys.Form.Prev):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case keyMsg.Type == tea.KeyEnter && m.focus != fieldDescription:
		if m.focus == fieldLabels {
			return m.submit()
		}
		return m.setFocus(m.focus + 1)
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.desc, cmd = m.desc.Update(msg)
	case fieldLabels:
		m.labels, cmd = m.labels.Update(msg)
	}
	return m.validate(), cmd
}

func (m Model) setFocus(f field) (Model, tea.Cmd) {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	m.labels.Blur()
	switch f {
	case fieldTitle:
		return m, m.title.Focus()
	case fieldDescription:
		return m, m.desc.Focus()
	default:
		return m, m.labels.Focus()
	}
}

func (m Model) validate() Model {
	m.err = ""
	if strings.TrimSpace(m.title.Value()) == "" {
		m.err = "title is required"
	}
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	m = m.validate()
	if m.err != "" {
		return m.setFocus(fieldTitle)
	}
	title := strings.TrimSpace(m.title.Value())
	desc := m.desc.Value()
	labels := gitlab.SplitLabels(m.labels.Value())

	if m.original == nil {
		out := SubmitMsg{Create: gitlab.CreateIssueOptions{
			Title:       title,
			Description: desc,
			Labels:      kanban.LabelsFor(labels, m.column),
		}}
		return m, func() tea.Msg { return out }
	}

	orig := *m.original
	var opts gitlab.UpdateIssueOptions
	if title != orig.Title {
		opts.Title = &title
	}
	if desc != orig.Description {
		opts.Description = &desc
	}
	if !slices.Equal(labels, kanban.StripMarkers(orig.Labels)) {
		opts.Labels = append(labels, markersOf(orig.Labels)...)
	}
	if opts.IsZero() {
		return m, func() tea.Msg { return CancelMsg{} }
	}
	out := SubmitMsg{IID: orig.IID, Edit: opts}
	return m, func() tea.Msg { return out }
}

func markersOf(labels []string) []string {
	var out []string
	for _, l := range labels {
		if kanban.IsMarker(l) {
			out = append(out, l)
		}
	}
	return out
}

// View renders the form box.
func (m Model) View() string {
	width := m.boxWidth()
	heading := "New issue in " + m.column.Title()
	if m.original != nil {
		heading = fmt.Sprintf("Edit #%d", m.original.IID)
	}

	count := uniseg.GraphemeClusterCount(m.title.Value())
	counter := styles.MutedStyle.Render(fmt.Sprintf("%d/%d", count, MaxTitleLength))

	descHint := ""
	if m.original != nil {
		if ins, del := journal.Changes(m.original.Description, m.desc.Value()); ins+del > 0 {
			descHint = fmt.Sprintf("+%d -%d", ins, del)
		}
	}

	parts := []string{
		styles.OverlayTitleStyle.Render(heading),
		styles.Section([]string{m.title.View(), counter}, "Title", m.err, width-2, m.focus == fieldTitle),
		styles.Section(strings.Split(m.desc.View(), "\n"), strings.TrimSpace("Description "+descHint), "", width-2, m.focus == fieldDescription),
		styles.Section([]string{m.labels.View()}, "Labels", "", width-2, m.focus == fieldLabels),
		styles.MutedStyle.Render("tab next · ctrl+s save · esc cancel"),
	}
	return styles.OverlayBoxStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Overlay centers the form over bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.View(), bg)
}
