// Package kanban holds the board's domain logic: column classification, drag
// reconciliation, the issue store and the sequencer that commits changes to
// GitLab one at a time.
//
// Nothing in this package touches the terminal. Reconcile and the label
// helpers are pure; Store and Sequencer are plain state owned by the caller's
// event loop.
package kanban

import (
	"strings"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// Column is one of the four board buckets an issue is classified into.
type Column string

const (
	ColumnTodo   Column = "todo"
	ColumnDoing  Column = "doing"
	ColumnReview Column = "review"
	ColumnDone   Column = "done"
)

// Columns lists the board columns in precedence order.
var Columns = []Column{ColumnTodo, ColumnDoing, ColumnReview, ColumnDone}

// markerLabels maps every recognized marker (lowercase) to its column.
// todo is listed so it is stripped on moves even though it is never written.
var markerLabels = map[string]Column{
	"todo":        ColumnTodo,
	"doing":       ColumnDoing,
	"in progress": ColumnDoing,
	"review":      ColumnReview,
	"testing":     ColumnReview,
}

// ParseColumn resolves a column name, ignoring case and surrounding blanks.
func ParseColumn(s string) (Column, bool) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Valid reports whether c is one of the four board columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnDoing, ColumnReview, ColumnDone:
		return true
	}
	return false
}

// Precedence is c's position in the todo < doing < review < done order.
// Invalid columns return -1.
func (c Column) Precedence() int {
	for i, col := range Columns {
		if col == c {
			return i
		}
	}
	return -1
}

// Marker is the label written for c, or "" for todo and done.
func (c Column) Marker() string {
	switch c {
	case ColumnDoing, ColumnReview:
		return string(c)
	}
	return ""
}

// Title is the column header text.
func (c Column) Title() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnDoing:
		return "Doing"
	case ColumnReview:
		return "Review"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

func (c Column) String() string {
	return string(c)
}

// Classify maps an issue to exactly one column. A closed issue is always
// done; otherwise doing markers win over review markers, and an issue with no
// marker is todo.
func Classify(issue gitlab.Issue) Column {
	if issue.Closed() {
		return ColumnDone
	}
	review := false
	for _, label := range issue.Labels {
		switch markerLabels[strings.ToLower(label)] {
		case ColumnDoing:
			return ColumnDoing
		case ColumnReview:
			review = true
		}
	}
	if review {
		return ColumnReview
	}
	return ColumnTodo
}

// IsMarker reports whether label is a column marker, ignoring case.
func IsMarker(label string) bool {
	_, ok := markerLabels[strings.ToLower(label)]
	return ok
}

// StripMarkers returns labels without any column marker, keeping the
// remaining labels in their original order and case. The result is never nil.
func StripMarkers(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if !IsMarker(label) {
			out = append(out, label)
		}
	}
	return out
}

// LabelsFor returns labels re-marked for column to: every marker stripped and
// the lowercase marker of to appended unless to is todo or done.
func LabelsFor(labels []string, to Column) []string {
	out := StripMarkers(labels)
	if marker := to.Marker(); marker != "" {
		out = append(out, marker)
	}
	return out
}

// Split groups issues by column, preserving list order inside each column.
func Split(issues []gitlab.Issue) map[Column][]gitlab.Issue {
	out := make(map[Column][]gitlab.Issue, len(Columns))
	for _, col := range Columns {
		out[col] = []gitlab.Issue{}
	}
	for _, issue := range issues {
		col := Classify(issue)
		out[col] = append(out[col], issue)
	}
	return out
}

// Counts returns how many issues land in each column.
func Counts(issues []gitlab.Issue) map[Column]int {
	out := make(map[Column]int, len(Columns))
	for _, issue := range issues {
		out[Classify(issue)]++
	}
	return out
}
