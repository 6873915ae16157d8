// Package gitlab is the board's gateway to the GitLab REST API (v4).
//
// Only the handful of endpoints the board needs are covered: member projects,
// a project's issues, and issue create/update. Issue state transitions go
// through UpdateIssue with a StateEvent; GitLab never returns state_event on
// reads, it reports State instead.
package gitlab

import (
	"strings"
	"time"
)

// State is an issue's server-side state.
type State string

const (
	StateOpened State = "opened"
	StateClosed State = "closed"
)

// StateEvent drives GitLab's issue state machine on update.
type StateEvent string

const (
	StateEventClose  StateEvent = "close"
	StateEventReopen StateEvent = "reopen"
)

// User is an issue author or assignee.
type User struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Issue is a project issue as returned by the API.
type Issue struct {
	ID          int       `json:"id"`
	IID         int       `json:"iid"`
	ProjectID   int       `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       State     `json:"state"`
	Labels      []string  `json:"labels"`
	Author      User      `json:"author"`
	Assignees   []User    `json:"assignees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	WebURL      string    `json:"web_url"`
}

// Closed reports whether the issue is closed.
func (i Issue) Closed() bool {
	return i.State == StateClosed
}

// HasLabel reports whether the issue carries label, ignoring case.
func (i Issue) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with i.
func (i Issue) Clone() Issue {
	if i.Labels != nil {
		i.Labels = append(make([]string, 0, len(i.Labels)), i.Labels...)
	}
	if i.Assignees != nil {
		i.Assignees = append(make([]User, 0, len(i.Assignees)), i.Assignees...)
	}
	return i
}

// Project is a GitLab project the user is a member of.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
}

// CreateIssueOptions are the fields accepted when creating an issue.
type CreateIssueOptions struct {
	Title       string
	Description string
	Labels      []string
}

// UpdateIssueOptions are the fields accepted when updating an issue.
// Nil pointers leave a field unchanged. A nil Labels slice leaves labels
// unchanged; a non-nil empty slice clears them.
type UpdateIssueOptions struct {
	Title       *string
	Description *string
	Labels      []string
	StateEvent  StateEvent
}

// IsZero reports whether the options would change nothing.
func (o UpdateIssueOptions) IsZero() bool {
	return o.Title == nil && o.Description == nil && o.Labels == nil && o.StateEvent == ""
}

// JoinLabels encodes labels the way the API expects them on writes.
func JoinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

// SplitLabels parses a comma separated label string, trimming blanks and
// dropping empty entries.
func SplitLabels(s string) []string {
	labels := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}
