// Package issuelist renders the open project as a flat, searchable table.
// Search, status filter and sort only change what is shown; manual
// reordering is reported to the controller as a ReorderMsg.
package issuelist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// ReorderMsg asks for iid to take overIID's place in the store order.
type ReorderMsg struct {
	IID     int
	OverIID int
}

// ReorderBlockedMsg is sent when reordering is attempted outside manual sort.
type ReorderBlockedMsg struct{}

// IssueClickedMsg is sent when a row is clicked.
type IssueClickedMsg struct {
	IID int
}

const (
	colIID     = 6
	colColumn  = 8
	colState   = 7
	colUpdated = 9
)

// Model holds the list view state.
type Model struct {
	issues     []gitlab.Issue
	rows       []gitlab.Issue
	query      kanban.Query
	cursor     int
	offset     int
	width      int
	height     int
	search     textinput.Model
	searching  bool
	pending    func(iid int) bool
	formatTime func(time.Time) string
	columns    map[kanban.Column]lipgloss.TerminalColor
	zonePrefix string
	dragIID    int
}

// New creates an empty list in manual order showing every issue.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title, description, labels"
	ti.CharLimit = 200
	return Model{
		query:      kanban.Query{Status: kanban.StatusAll, Sort: kanban.SortManual},
		search:     ti,
		formatTime: func(t time.Time) string { return t.Format("Jan 02") },
		zonePrefix: zone.NewPrefix(),
	}
}

// SetIssues replaces the underlying store list and re-applies the query.
// The cursor stays on the same issue when it is still shown.
func (m Model) SetIssues(issues []gitlab.Issue) Model {
	keep := 0
	if issue, ok := m.SelectedIssue(); ok {
		keep = issue.IID
	}
	m.issues = issues
	return m.refresh(keep)
}

func (m Model) refresh(keep int) Model {
	m.rows = m.query.Apply(m.issues)
	if keep != 0 {
		for i, issue := range m.rows {
			if issue.IID == keep {
				m.cursor = i
			}
		}
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	return m.clampOffset()
}

// SetSize sets the viewport size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.search.Width = max(width-4, 10)
	return m.clampOffset()
}

// SetPending installs the predicate that marks rows waiting on GitLab.
func (m Model) SetPending(fn func(iid int) bool) Model {
	m.pending = fn
	return m
}

// SetTimeFormatter controls how the updated column is printed.
func (m Model) SetTimeFormatter(fn func(time.Time) string) Model {
	if fn != nil {
		m.formatTime = fn
	}
	return m
}

// SetColumnColors tints the column cell of each row.
func (m Model) SetColumnColors(colors map[kanban.Column]lipgloss.TerminalColor) Model {
	m.columns = colors
	return m
}

// Query returns the current search, filter and sort.
func (m Model) Query() kanban.Query {
	return m.query
}

// Rows returns the issues currently shown, in display order.
func (m Model) Rows() []gitlab.Issue {
	return m.rows
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searching
}

// SelectedIssue returns the row under the cursor.
func (m Model) SelectedIssue() (gitlab.Issue, bool) {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor], true
	}
	return gitlab.Issue{}, false
}

// SelectIID moves the cursor to iid when it is shown.
func (m Model) SelectIID(iid int) (Model, bool) {
	for i, issue := range m.rows {
		if issue.IID == iid {
			m.cursor = i
			return m.clampOffset(), true
		}
	}
	return m, false
}

// Update handles navigation, search, filter, sort and reorder keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query.Search = ""
		return m.refresh(m.selectedIID()), nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query.Search = m.search.Value()
	return m.refresh(m.selectedIID()), cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.List.ReorderUp):
		return m.reorder(-1)
	case key.Matches(msg, keys.List.ReorderDown):
		return m.reorder(1)
	case key.Matches(msg, keys.Common.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Common.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.List.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, keys.List.Filter):
		m.query.Status = m.query.Status.Next()
		return m.refresh(m.selectedIID()), nil
	case key.Matches(msg, keys.List.Sort):
		m.query.Sort = m.query.Sort.Next()
		return m.refresh(m.selectedIID()), nil
	}
	return m.clampOffset(), nil
}

// reorder swaps the selected row with its visible neighbour in dir. The
// store is not touched here; the controller applies the ReorderMsg and the
// cursor follows the issue on the next SetIssues.
func (m Model) reorder(dir int) (Model, tea.Cmd) {
	if !m.query.Manual() {
		return m, func() tea.Msg { return ReorderBlockedMsg{} }
	}
	current, ok := m.SelectedIssue()
	next := m.cursor + dir
	if !ok || next < 0 || next >= len(m.rows) {
		return m, nil
	}
	over := m.rows[next].IID
	return m, func() tea.Msg { return ReorderMsg{IID: current.IID, OverIID: over} }
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	iid, idx, ok := m.rowAt(msg)
	switch msg.Action {
	case tea.MouseActionPress:
		if ok {
			m.cursor = idx
			m.dragIID = iid
		}
	case tea.MouseActionRelease:
		from := m.dragIID
		m.dragIID = 0
		if !ok || from == 0 {
			return m, nil
		}
		m.cursor = idx
		if from == iid {
			return m, func() tea.Msg { return IssueClickedMsg{IID: iid} }
		}
		if !m.query.Manual() {
			return m, func() tea.Msg { return ReorderBlockedMsg{} }
		}
		return m, func() tea.Msg { return ReorderMsg{IID: from, OverIID: iid} }
	}
	return m, nil
}

func (m Model) rowAt(msg tea.MouseMsg) (iid, index int, ok bool) {
	for i := m.offset; i < min(len(m.rows), m.offset+m.visibleRows()); i++ {
		if z := zone.Get(m.rowZone(m.rows[i].IID)); z != nil && z.InBounds(msg) {
			return m.rows[i].IID, i, true
		}
	}
	return 0, 0, false
}

func (m Model) selectedIID() int {
	if issue, ok := m.SelectedIssue(); ok {
		return issue.IID
	}
	return 0
}

// visibleRows is the table height minus the search line, header and footer.
func (m Model) visibleRows() int {
	return max(m.height-3, 1)
}

func (m Model) clampOffset() Model {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-visible), 0)
	return m
}

func (m Model) rowZone(iid int) string {
	return m.zonePrefix + "row-" + strconv.Itoa(iid)
}

// View renders the search line, header, rows and a footer with the query.
func (m Model) View() string {
	titleWidth := max(m.width-colIID-colColumn-colState-colUpdated-6, 10)
	labelWidth := titleWidth / 3
	titleWidth -= labelWidth

	var b strings.Builder
	if m.searching || m.query.Search != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(styles.MutedStyle.Render("press / to search"))
	}
	b.WriteString("\n")

	header := " " + styles.PadRight("IID", colIID) + " " +
		styles.PadRight("TITLE", titleWidth) + " " +
		styles.PadRight("LABELS", labelWidth) + " " +
		styles.PadRight("COLUMN", colColumn) + " " +
		styles.PadRight("STATE", colState) + " " +
		styles.PadRight("UPDATED", colUpdated)
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.TextSecondaryColor).Render(header))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(styles.MutedStyle.Italic(true).Render(" No matching issues"))
		b.WriteString("\n")
	}
	end := min(len(m.rows), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor, titleWidth, labelWidth))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d of %d · status: %s · sort: %s", len(m.rows), len(m.issues), m.query.Status, m.query.Sort)
	if !m.query.Manual() {
		footer += " · reorder needs manual sort"
	}
	b.WriteString(styles.MutedStyle.Render(footer))
	return b.String()
}

func (m Model) renderRow(issue gitlab.Issue, selected bool, titleWidth, labelWidth int) string {
	prefix := " "
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render(">")
	}

	col := kanban.Classify(issue)
	colStyle := lipgloss.NewStyle()
	if c, ok := m.columns[col]; ok && c != nil {
		colStyle = colStyle.Foreground(c)
	}

	title := issue.Title
	if m.pending != nil && m.pending(issue.IID) {
		title = "⧗ " + title
	}
	titleStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(selected)

	row := prefix +
		styles.SecondaryStyle.Render(styles.PadRight("#"+strconv.Itoa(issue.IID), colIID)) + " " +
		titleStyle.Render(styles.PadRight(title, titleWidth)) + " " +
		styles.LabelStyle.Render(styles.PadRight(strings.Join(kanban.StripMarkers(issue.Labels), ","), labelWidth)) + " " +
		colStyle.Render(styles.PadRight(col.Title(), colColumn)) + " " +
		lipgloss.NewStyle().Foreground(styles.StateColor(issue.Closed())).Render(styles.PadRight(string(issue.State), colState)) + " " +
		styles.MutedStyle.Render(styles.PadRight(m.formatTime(issue.UpdatedAt), colUpdated))
	return zone.Mark(m.rowZone(issue.IID), row)
}
