package kanban

import (
	"cmp"
	"slices"
	"strings"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// ApplyOrder arranges issues by a saved iid order. Issues missing from order
// keep their relative server order and come first; the rest follow in saved
// order. Saved iids that no longer exist are ignored.
func ApplyOrder(issues []gitlab.Issue, order []int) []gitlab.Issue {
	if len(order) == 0 {
		return issues
	}
	rank := make(map[int]int, len(order))
	for i, iid := range order {
		if _, dup := rank[iid]; !dup {
			rank[iid] = i
		}
	}

	fresh := make([]gitlab.Issue, 0, len(issues))
	known := make([]gitlab.Issue, 0, len(issues))
	for _, issue := range issues {
		if _, ok := rank[issue.IID]; ok {
			known = append(known, issue)
		} else {
			fresh = append(fresh, issue)
		}
	}
	slices.SortStableFunc(known, func(a, b gitlab.Issue) int {
		return cmp.Compare(rank[a.IID], rank[b.IID])
	})
	return append(fresh, known...)
}

// MoveBeside performs an array move: the issue with iid is taken out and
// reinserted at the index the issue with overIID held before the move. ok is
// false when either issue is missing or they are the same.
func MoveBeside(issues []gitlab.Issue, iid, overIID int) (out []gitlab.Issue, ok bool) {
	from, to := indexOf(issues, iid), indexOf(issues, overIID)
	if from < 0 || to < 0 || from == to {
		return issues, false
	}
	moved := issues[from]
	return insertAt(without(issues, from), to, moved), true
}

// StatusFilter narrows the list view by issue state.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusOpen   StatusFilter = "open"
	StatusClosed StatusFilter = "closed"
)

// Next cycles all -> open -> closed -> all.
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case StatusAll:
		return StatusOpen
	case StatusOpen:
		return StatusClosed
	}
	return StatusAll
}

func (f StatusFilter) match(issue gitlab.Issue) bool {
	switch f {
	case StatusOpen:
		return !issue.Closed()
	case StatusClosed:
		return issue.Closed()
	}
	return true
}

// SortMode orders the list view.
type SortMode int

const (
	SortManual SortMode = iota
	SortCreatedDesc
	SortCreatedAsc
	SortUpdatedDesc
	SortUpdatedAsc
	SortTitleAsc
	SortTitleDesc
	sortModeCount
)

func (m SortMode) String() string {
	switch m {
	case SortManual:
		return "manual"
	case SortCreatedDesc:
		return "newest"
	case SortCreatedAsc:
		return "oldest"
	case SortUpdatedDesc:
		return "recently updated"
	case SortUpdatedAsc:
		return "least recently updated"
	case SortTitleAsc:
		return "title a-z"
	case SortTitleDesc:
		return "title z-a"
	}
	return "unknown"
}

// Next cycles through every sort mode.
func (m SortMode) Next() SortMode {
	return (m + 1) % sortModeCount
}

// Query is the list view's search, filter and sort state. It never changes
// the store; Apply returns a new slice.
type Query struct {
	Search string
	Status StatusFilter
	Sort   SortMode
}

// Manual reports whether the list shows store order, the only mode in which
// reordering is allowed.
func (q Query) Manual() bool {
	return q.Sort == SortManual
}

// Apply filters and sorts issues without modifying the input.
func (q Query) Apply(issues []gitlab.Issue) []gitlab.Issue {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]gitlab.Issue, 0, len(issues))
	for _, issue := range issues {
		if q.Status.match(issue) && matchesSearch(issue, needle) {
			out = append(out, issue)
		}
	}

	var compare func(a, b gitlab.Issue) int
	switch q.Sort {
	case SortCreatedDesc:
		compare = func(a, b gitlab.Issue) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortCreatedAsc:
		compare = func(a, b gitlab.Issue) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortUpdatedDesc:
		compare = func(a, b gitlab.Issue) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	case SortUpdatedAsc:
		compare = func(a, b gitlab.Issue) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortTitleAsc:
		compare = func(a, b gitlab.Issue) int { return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	case SortTitleDesc:
		compare = func(a, b gitlab.Issue) int { return cmp.Compare(strings.ToLower(b.Title), strings.ToLower(a.Title)) }
	}
	if compare != nil {
		slices.SortStableFunc(out, compare)
	}
	return out
}

func matchesSearch(issue gitlab.Issue, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(issue.Title), needle) ||
		strings.Contains(strings.ToLower(issue.Description), needle) {
		return true
	}
	for _, label := range issue.Labels {
		if strings.Contains(strings.ToLower(label), needle) {
			return true
		}
	}
	return false
}
