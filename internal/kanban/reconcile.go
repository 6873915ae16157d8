package kanban

import (
	"github.com/zjrosen/glboard/internal/gitlab"
)

// DropTarget is where a dragged issue was released: either a column
// container or another issue card. IssueIID wins when both are set.
type DropTarget struct {
	Column   Column
	IssueIID int
}

// OnColumn targets a column container.
func OnColumn(c Column) DropTarget { return DropTarget{Column: c} }

// OnIssue targets another issue card.
func OnIssue(iid int) DropTarget { return DropTarget{IssueIID: iid} }

// Mutation is the GitLab change that persists a cross-column move.
type Mutation struct {
	IID        int
	From       Column
	To         Column
	Labels     []string // nil leaves labels unchanged
	StateEvent gitlab.StateEvent
}

// Options converts m into an UpdateIssue request.
func (m Mutation) Options() gitlab.UpdateIssueOptions {
	opts := gitlab.UpdateIssueOptions{StateEvent: m.StateEvent}
	if m.Labels != nil {
		opts.Labels = append([]string{}, m.Labels...)
	}
	return opts
}

// Apply returns issue as it looks once m has been accepted by the server.
func (m Mutation) Apply(issue gitlab.Issue) gitlab.Issue {
	out := issue.Clone()
	switch m.StateEvent {
	case gitlab.StateEventClose:
		out.State = gitlab.StateClosed
	case gitlab.StateEventReopen:
		out.State = gitlab.StateOpened
	}
	if m.Labels != nil {
		out.Labels = append([]string{}, m.Labels...)
	}
	return out
}

// MoveMutation derives the mutation that moves issue into column to.
// Moving into done only closes; moving out of done reopens and re-marks
// labels; any other move only re-marks labels. ok is false when issue is
// already in to or to is not a column.
func MoveMutation(issue gitlab.Issue, to Column) (m Mutation, ok bool) {
	from := Classify(issue)
	if !to.Valid() || from == to {
		return Mutation{}, false
	}

	m = Mutation{IID: issue.IID, From: from, To: to}
	switch {
	case to == ColumnDone:
		m.StateEvent = gitlab.StateEventClose
	case from == ColumnDone:
		m.StateEvent = gitlab.StateEventReopen
		m.Labels = LabelsFor(issue.Labels, to)
	default:
		m.Labels = LabelsFor(issue.Labels, to)
	}
	return m, true
}

// Result is the outcome of reconciling one drag gesture.
type Result struct {
	// Issues is the full new list. When Changed is false it is the input.
	Issues   []gitlab.Issue
	Changed  bool
	Mutation *Mutation
}

// Reconcile turns a drag of draggedIID released on target into a new issue
// list and, for cross-column moves, the mutation that persists it. Unknown
// issues, unknown columns and drops onto the dragged issue itself leave the
// list untouched. The input slice is never modified.
func Reconcile(issues []gitlab.Issue, draggedIID int, target DropTarget) Result {
	unchanged := Result{Issues: issues}

	src := indexOf(issues, draggedIID)
	if src < 0 {
		return unchanged
	}
	dragged := issues[src]

	var to Column
	over := -1
	switch {
	case target.IssueIID != 0:
		if target.IssueIID == draggedIID {
			return unchanged
		}
		if over = indexOf(issues, target.IssueIID); over < 0 {
			return unchanged
		}
		to = Classify(issues[over])
	case target.Column.Valid():
		to = target.Column
	default:
		return unchanged
	}

	from := Classify(dragged)
	if from == to {
		if over < 0 {
			return unchanged
		}
		return reorder(issues, dragged, issues[over], from)
	}

	m, ok := MoveMutation(dragged, to)
	if !ok {
		return unchanged
	}
	rest := without(issues, src)
	out := insertAt(rest, InsertionIndex(rest, to), m.Apply(dragged))
	return Result{Issues: out, Changed: true, Mutation: &m}
}

// reorder moves dragged next to overIssue inside column col: after it when
// moving forward in the column, before it when moving backward.
func reorder(issues []gitlab.Issue, dragged, overIssue gitlab.Issue, col Column) Result {
	active, target := -1, -1
	pos := 0
	for _, issue := range issues {
		if Classify(issue) != col {
			continue
		}
		switch issue.IID {
		case dragged.IID:
			active = pos
		case overIssue.IID:
			target = pos
		}
		pos++
	}
	if active < 0 || target < 0 || active == target {
		return Result{Issues: issues}
	}

	rest := without(issues, indexOf(issues, dragged.IID))
	at := indexOf(rest, overIssue.IID)
	if active < target {
		at++
	}
	return Result{Issues: insertAt(rest, at, dragged), Changed: true}
}

// InsertionIndex is where an issue moving into column to is placed in list:
// right after the last issue already in to, or, when to is empty, before the
// first issue of a later column (end of list if there is none).
func InsertionIndex(list []gitlab.Issue, to Column) int {
	last := -1
	for i, issue := range list {
		if Classify(issue) == to {
			last = i
		}
	}
	if last >= 0 {
		return last + 1
	}

	rank := to.Precedence()
	for i, issue := range list {
		if Classify(issue).Precedence() > rank {
			return i
		}
	}
	return len(list)
}

func indexOf(issues []gitlab.Issue, iid int) int {
	for i, issue := range issues {
		if issue.IID == iid {
			return i
		}
	}
	return -1
}

// without returns a new slice lacking the element at i.
func without(issues []gitlab.Issue, i int) []gitlab.Issue {
	out := make([]gitlab.Issue, 0, len(issues))
	out = append(out, issues[:i]...)
	return append(out, issues[i+1:]...)
}

// insertAt returns a new slice with issue placed at index i.
func insertAt(issues []gitlab.Issue, i int, issue gitlab.Issue) []gitlab.Issue {
	out := make([]gitlab.Issue, 0, len(issues)+1)
	out = append(out, issues[:i]...)
	out = append(out, issue)
	return append(out, issues[i:]...)
}
