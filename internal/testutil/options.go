package testutil

import (
	"fmt"
	"time"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// baseTime anchors generated timestamps so tests are deterministic.
var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// IssueOption configures an issue built by NewIssue.
type IssueOption func(*gitlab.Issue)

// NewIssue returns an opened issue with sensible defaults. Newer iids get
// later timestamps, matching how GitLab numbers issues.
func NewIssue(iid int, opts ...IssueOption) gitlab.Issue {
	at := baseTime.Add(time.Duration(iid) * time.Hour)
	issue := gitlab.Issue{
		ID:        1000 + iid,
		IID:       iid,
		ProjectID: 1,
		Title:     fmt.Sprintf("Issue %d", iid),
		State:     gitlab.StateOpened,
		Labels:    []string{},
		Author:    gitlab.User{ID: 1, Name: "Alice Example", Username: "alice"},
		CreatedAt: at,
		UpdatedAt: at,
		WebURL:    fmt.Sprintf("https://gitlab.example.com/group/app/-/issues/%d", iid),
	}
	for _, opt := range opts {
		opt(&issue)
	}
	return issue
}

// Title sets the issue title.
func Title(title string) IssueOption {
	return func(i *gitlab.Issue) { i.Title = title }
}

// Description sets the issue description.
func Description(desc string) IssueOption {
	return func(i *gitlab.Issue) { i.Description = desc }
}

// Labels appends labels.
func Labels(labels ...string) IssueOption {
	return func(i *gitlab.Issue) { i.Labels = append(i.Labels, labels...) }
}

// Closed marks the issue closed.
func Closed() IssueOption {
	return func(i *gitlab.Issue) { i.State = gitlab.StateClosed }
}

// Project sets the owning project id.
func Project(id int) IssueOption {
	return func(i *gitlab.Issue) { i.ProjectID = id }
}

// Assignee adds an assignee by username.
func Assignee(username string) IssueOption {
	return func(i *gitlab.Issue) {
		i.Assignees = append(i.Assignees, gitlab.User{Name: username, Username: username})
	}
}

// CreatedAt sets the created_at timestamp.
func CreatedAt(t time.Time) IssueOption {
	return func(i *gitlab.Issue) { i.CreatedAt = t }
}

// UpdatedAt sets the updated_at timestamp.
func UpdatedAt(t time.Time) IssueOption {
	return func(i *gitlab.Issue) { i.UpdatedAt = t }
}
