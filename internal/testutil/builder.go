// Package testutil builds GitLab fixtures for tests: issues with functional
// options, preset boards, rapid generators and an in-memory Gateway.
package testutil

import (
	"github.com/zjrosen/glboard/internal/gitlab"
)

// Builder accumulates issues in list order.
type Builder struct {
	issues []gitlab.Issue
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithIssue appends an issue with optional configuration.
func (b *Builder) WithIssue(iid int, opts ...IssueOption) *Builder {
	b.issues = append(b.issues, NewIssue(iid, opts...))
	return b
}

// Issues returns a copy of the accumulated list.
func (b *Builder) Issues() []gitlab.Issue {
	out := make([]gitlab.Issue, len(b.issues))
	for i, issue := range b.issues {
		out[i] = issue.Clone()
	}
	return out
}

// Gateway returns a FakeGateway serving the accumulated issues for projectID.
func (b *Builder) Gateway(projectID int) *FakeGateway {
	gw := NewFakeGateway()
	gw.SetIssues(projectID, b.Issues())
	return gw
}
