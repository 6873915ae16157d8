// Package board renders the four-column Kanban view and turns keyboard and
// mouse gestures into drag sessions. It never changes issues itself: a
// finished drag is reported as a DropMsg for the mode controller to commit.
package board

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/ui/overlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// ColumnStyle is the display name and color of a column.
type ColumnStyle struct {
	Title string
	Color lipgloss.TerminalColor
}

// DefaultColumnStyles uses the column titles and no tint.
func DefaultColumnStyles() map[kanban.Column]ColumnStyle {
	out := make(map[kanban.Column]ColumnStyle, len(kanban.Columns))
	for _, c := range kanban.Columns {
		out[c] = ColumnStyle{Title: c.Title()}
	}
	return out
}

// IssueClickedMsg is sent when a card is clicked without being moved.
type IssueClickedMsg struct {
	IID int
}

// Model holds the board state.
type Model struct {
	columns      []column
	focused      int
	width        int
	height       int
	showCounts   bool
	keyboardDrag bool
	colStyles    map[kanban.Column]ColumnStyle
	pending      func(iid int) bool
	zonePrefix   string
	drag         *Session
}

// New creates an empty board focused on the todo column.
func New(colStyles map[kanban.Column]ColumnStyle) Model {
	if colStyles == nil {
		colStyles = DefaultColumnStyles()
	}
	cols := make([]column, len(kanban.Columns))
	for i, c := range kanban.Columns {
		cols[i] = newColumn(c)
	}
	return Model{
		columns:      cols,
		showCounts:   true,
		keyboardDrag: true,
		colStyles:    colStyles,
		zonePrefix:   zone.NewPrefix(),
	}
}

// SetIssues distributes the store's list into columns, keeping each column's
// selection on the same issue when it is still there.
func (m Model) SetIssues(issues []gitlab.Issue) Model {
	split := kanban.Split(issues)
	for i := range m.columns {
		m.columns[i] = m.columns[i].setIssues(split[m.columns[i].kind])
	}
	if m.drag != nil {
		if _, ok := m.find(m.drag.IID); !ok {
			m.drag = nil
		}
	}
	return m
}

// SetSize splits width evenly across the columns.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	colWidth := width / len(m.columns)
	for i := range m.columns {
		w := colWidth
		if i == len(m.columns)-1 {
			w = width - colWidth*(len(m.columns)-1)
		}
		m.columns[i] = m.columns[i].setSize(w, height)
	}
	return m
}

// SetShowCounts toggles the issue count in column titles.
func (m Model) SetShowCounts(show bool) Model {
	m.showCounts = show
	return m
}

// SetKeyboardDrag enables or disables picking cards up with the grab key.
func (m Model) SetKeyboardDrag(enabled bool) Model {
	m.keyboardDrag = enabled
	return m
}

// SetColumnStyles replaces column titles and colors.
func (m Model) SetColumnStyles(colStyles map[kanban.Column]ColumnStyle) Model {
	if colStyles != nil {
		m.colStyles = colStyles
	}
	return m
}

// SetPending installs the predicate that marks cards waiting on GitLab.
func (m Model) SetPending(fn func(iid int) bool) Model {
	m.pending = fn
	return m
}

// FocusedColumn returns the column under the cursor.
func (m Model) FocusedColumn() kanban.Column {
	return m.columns[m.focused].kind
}

// SetFocus moves the cursor to column c.
func (m Model) SetFocus(c kanban.Column) Model {
	for i, col := range m.columns {
		if col.kind == c {
			m.focused = i
		}
	}
	return m
}

// SelectedIssue returns the card under the cursor.
func (m Model) SelectedIssue() (gitlab.Issue, bool) {
	return m.columns[m.focused].selected()
}

// SelectIID focuses the column holding iid and puts the cursor on it.
func (m Model) SelectIID(iid int) (Model, bool) {
	for i := range m.columns {
		if col, ok := m.columns[i].selectIID(iid); ok {
			m.columns[i] = col
			m.focused = i
			return m, true
		}
	}
	return m, false
}

// ColumnIssues returns the issues shown in column c, top to bottom.
func (m Model) ColumnIssues(c kanban.Column) []gitlab.Issue {
	for _, col := range m.columns {
		if col.kind == c {
			return col.issues
		}
	}
	return nil
}

func (m Model) find(iid int) (kanban.Column, bool) {
	for _, col := range m.columns {
		for _, issue := range col.issues {
			if issue.IID == iid {
				return col.kind, true
			}
		}
	}
	return "", false
}

// Update handles navigation, keyboard drag and mouse drag.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Common.Left):
		if m.focused > 0 {
			m.focused--
		}
		m = m.trackKeyboardTarget()
	case key.Matches(msg, keys.Common.Right):
		if m.focused < len(m.columns)-1 {
			m.focused++
		}
		m = m.trackKeyboardTarget()
	case key.Matches(msg, keys.Common.Up):
		m.columns[m.focused] = m.columns[m.focused].up()
		m = m.trackKeyboardTarget()
	case key.Matches(msg, keys.Common.Down):
		m.columns[m.focused] = m.columns[m.focused].down()
		m = m.trackKeyboardTarget()
	case key.Matches(msg, keys.Kanban.Grab):
		if m.drag != nil {
			return m.drop()
		}
		if m.keyboardDrag {
			return m.grab(false), nil
		}
	case key.Matches(msg, keys.Common.Escape):
		if m.drag != nil {
			m.drag = nil
		}
	}
	return m, nil
}

// View renders the board.
func (m Model) View() string {
	height := max(m.height, 3)
	rendered := make([]string, len(m.columns))
	for i, col := range m.columns {
		col.state.focused = i == m.focused
		col.state.pending = m.pending
		col.state.zoneID = m.cardZone
		col.state.dragIID = 0
		if m.drag != nil {
			col.state.dragIID = m.drag.IID
		}

		cs := m.colStyles[col.kind]
		title := cs.Title
		if title == "" {
			title = col.kind.Title()
		}
		hint := ""
		if m.showCounts {
			hint = "(" + strconv.Itoa(len(col.issues)) + ")"
		}
		empty := "No issues"
		highlight := m.drag != nil && m.drag.Over == col.kind
		if highlight && len(col.issues) == 0 {
			empty = "Drop here"
		}

		panel := styles.Panel{
			Title:     title,
			Hint:      hint,
			Content:   col.view(empty),
			Width:     col.width,
			Height:    height,
			Focused:   i == m.focused,
			Color:     cs.Color,
			Highlight: highlight,
		}
		rendered[i] = zone.Mark(m.columnZone(col.kind), panel.Render())
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.drag != nil && m.drag.Mouse {
		view = m.overlayGhost(view)
	}
	return view
}

func (m Model) overlayGhost(view string) string {
	col, ok := m.find(m.drag.IID)
	if !ok {
		return view
	}
	var issue gitlab.Issue
	for _, is := range m.ColumnIssues(col) {
		if is.IID == m.drag.IID {
			issue = is
		}
	}
	ghost := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.DragTargetColor).
		Padding(0, 1).
		Render(styles.Truncate(fmt.Sprintf("#%d %s", issue.IID, issue.Title), 28))
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   max(m.height, 3),
		Position: overlay.Absolute,
		X:        m.drag.X + 2,
		Y:        m.drag.Y,
	}, ghost, view)
}

func (m Model) cardZone(iid int) string {
	return m.zonePrefix + "card-" + strconv.Itoa(iid)
}

func (m Model) columnZone(c kanban.Column) string {
	return m.zonePrefix + "col-" + string(c)
}
