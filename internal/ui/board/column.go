package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/ui/styles"
)

// cardItem adapts an issue to bubbles/list.
type cardItem struct {
	issue gitlab.Issue
}

func (c cardItem) FilterValue() string { return c.issue.Title }

// cardState is shared between a column and its delegate. The board refreshes
// it right before rendering.
type cardState struct {
	focused  bool
	dragIID  int
	pending  func(iid int) bool
	zoneID   func(iid int) string
	maxWidth int
}

// cardDelegate renders an issue as two lines: the title and its labels.
type cardDelegate struct {
	state *cardState
}

func (d cardDelegate) Height() int { return 2 }

func (d cardDelegate) Spacing() int { return 1 }

func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	card, ok := item.(cardItem)
	if !ok {
		return
	}
	issue := card.issue
	width := max(d.state.maxWidth-1, 4)

	selected := d.state.focused && index == m.Index()
	prefix := " "
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render(">")
	}

	id := fmt.Sprintf("#%d ", issue.IID)
	marker := ""
	switch {
	case d.state.dragIID == issue.IID:
		marker = "⇢ "
	case d.state.pending != nil && d.state.pending(issue.IID):
		marker = "⧗ "
	}
	title := styles.Truncate(issue.Title, max(width-lipgloss.Width(id)-lipgloss.Width(marker), 1))

	titleStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(selected)
	line1 := styles.SecondaryStyle.Render(id) + titleStyle.Render(title)
	if marker != "" {
		line1 = styles.PendingStyle.Render(marker) + line1
	}

	labels := kanban.StripMarkers(issue.Labels)
	var meta []string
	if len(issue.Assignees) > 0 {
		meta = append(meta, "@"+issue.Assignees[0].Username)
	}
	line2 := "  " + styles.FormatLabels(labels, max(width-12, 4))
	if len(meta) > 0 {
		line2 += " " + styles.MutedStyle.Render(strings.Join(meta, " "))
	}

	if d.state.dragIID == issue.IID {
		line1 = styles.DragSourceStyle.Render(id + title)
	}
	// Both lines span the full width so the zone covers the whole card.
	out := fitLine(prefix+line1, d.state.maxWidth) + "\n" + fitLine(line2, d.state.maxWidth)
	if d.state.zoneID != nil {
		out = zone.Mark(d.state.zoneID(issue.IID), out)
	}
	_, _ = fmt.Fprint(w, out)
}

// fitLine truncates or pads a styled line to exactly width cells.
func fitLine(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// column is one of the four board columns.
type column struct {
	kind   kanban.Column
	list   list.Model
	state  *cardState
	issues []gitlab.Issue
	width  int
	height int
}

func newColumn(kind kanban.Column) column {
	state := &cardState{}
	l := list.New(nil, cardDelegate{state: state}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return column{kind: kind, list: l, state: state}
}

func (c column) setIssues(issues []gitlab.Issue) column {
	keep := 0
	if sel, ok := c.selected(); ok {
		keep = sel.IID
	}

	items := make([]list.Item, len(issues))
	for i, issue := range issues {
		items[i] = cardItem{issue: issue}
	}
	c.issues = issues
	c.list.SetItems(items)
	if keep != 0 {
		c, _ = c.selectIID(keep)
	}
	if n := len(items); n > 0 && c.list.Index() >= n {
		c.list.Select(n - 1)
	}
	return c
}

func (c column) setSize(width, height int) column {
	c.width = width
	c.height = height
	// Inside the panel border.
	c.list.SetSize(max(width-2, 1), max(height-2, 1))
	c.state.maxWidth = max(width-2, 1)
	return c
}

func (c column) selected() (gitlab.Issue, bool) {
	if card, ok := c.list.SelectedItem().(cardItem); ok {
		return card.issue, true
	}
	return gitlab.Issue{}, false
}

func (c column) selectIID(iid int) (column, bool) {
	for i, issue := range c.issues {
		if issue.IID == iid {
			c.list.Select(i)
			return c, true
		}
	}
	return c, false
}

func (c column) up() column {
	c.list.CursorUp()
	return c
}

func (c column) down() column {
	c.list.CursorDown()
	return c
}

func (c column) view(empty string) string {
	if len(c.issues) == 0 {
		return styles.MutedStyle.Italic(true).Render(" " + empty)
	}
	return c.list.View()
}
