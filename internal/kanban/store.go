package kanban

import (
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/log"
)

// ViewMode selects how the open project is rendered.
type ViewMode string

const (
	ViewKanban ViewMode = "kanban"
	ViewList   ViewMode = "list"
)

// ParseViewMode returns the view for s, defaulting to kanban.
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewList {
		return ViewList
	}
	return ViewKanban
}

// Store owns the ordered issue list of the open project plus its loading,
// error and view flags. It is not safe for concurrent use; the UI event loop
// is its only writer. The list is never edited in place: every write swaps in
// a new slice, so a slice returned by Issues stays valid as a snapshot.
type Store struct {
	issues  []gitlab.Issue
	loading bool
	err     error
	view    ViewMode
}

// NewStore returns an empty store in kanban view.
func NewStore() *Store {
	return &Store{issues: []gitlab.Issue{}, view: ViewKanban}
}

// Issues returns the current list. Callers must treat it as read-only.
func (s *Store) Issues() []gitlab.Issue {
	return s.issues
}

// Snapshot returns a deep copy of the current list.
func (s *Store) Snapshot() []gitlab.Issue {
	out := make([]gitlab.Issue, len(s.issues))
	for i, issue := range s.issues {
		out[i] = issue.Clone()
	}
	return out
}

// Len is the number of issues held.
func (s *Store) Len() int {
	return len(s.issues)
}

// Get looks up an issue by iid.
func (s *Store) Get(iid int) (gitlab.Issue, bool) {
	if i := indexOf(s.issues, iid); i >= 0 {
		return s.issues[i], true
	}
	return gitlab.Issue{}, false
}

// Replace swaps in a whole new list. Duplicate iids keep their first
// occurrence.
func (s *Store) Replace(issues []gitlab.Issue) {
	seen := make(map[int]struct{}, len(issues))
	out := make([]gitlab.Issue, 0, len(issues))
	for _, issue := range issues {
		if _, dup := seen[issue.IID]; dup {
			log.Warn(log.CatStore, "dropping duplicate issue", "iid", issue.IID)
			continue
		}
		seen[issue.IID] = struct{}{}
		out = append(out, issue)
	}
	s.issues = out
	log.Debug(log.CatStore, "replaced issues", "count", len(out))
}

// Add prepends issue. An existing entry with the same iid is dropped first.
func (s *Store) Add(issue gitlab.Issue) {
	out := make([]gitlab.Issue, 0, len(s.issues)+1)
	out = append(out, issue)
	for _, existing := range s.issues {
		if existing.IID != issue.IID {
			out = append(out, existing)
		}
	}
	s.issues = out
	log.Debug(log.CatStore, "added issue", "iid", issue.IID)
}

// Update replaces the issue with the same iid in place. It reports false
// when no such issue is held.
func (s *Store) Update(issue gitlab.Issue) bool {
	i := indexOf(s.issues, issue.IID)
	if i < 0 {
		return false
	}
	out := append([]gitlab.Issue(nil), s.issues...)
	out[i] = issue
	s.issues = out
	log.Debug(log.CatStore, "updated issue", "iid", issue.IID)
	return true
}

// Remove drops the issue with iid. It reports false when none was held.
func (s *Store) Remove(iid int) bool {
	i := indexOf(s.issues, iid)
	if i < 0 {
		return false
	}
	s.issues = without(s.issues, i)
	log.Debug(log.CatStore, "removed issue", "iid", iid)
	return true
}

// Loading reports whether a list request is outstanding.
func (s *Store) Loading() bool { return s.loading }

func (s *Store) SetLoading(v bool) { s.loading = v }

// Err is the last error surfaced to the user, if not yet dismissed.
func (s *Store) Err() error { return s.err }

func (s *Store) SetErr(err error) { s.err = err }

func (s *Store) ClearErr() { s.err = nil }

func (s *Store) View() ViewMode { return s.view }

func (s *Store) SetView(v ViewMode) { s.view = ParseViewMode(string(v)) }

// ToggleView flips between kanban and list and returns the new mode.
func (s *Store) ToggleView() ViewMode {
	if s.view == ViewList {
		s.view = ViewKanban
	} else {
		s.view = ViewList
	}
	return s.view
}

// Order returns the iids in list order.
func (s *Store) Order() []int {
	return IIDs(s.issues)
}

// IIDs returns the iids of issues in order.
func IIDs(issues []gitlab.Issue) []int {
	out := make([]int, len(issues))
	for i, issue := range issues {
		out[i] = issue.IID
	}
	return out
}
