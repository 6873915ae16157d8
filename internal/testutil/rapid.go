package testutil

import (
	"pgregory.net/rapid"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// labelPool mixes markers in assorted case with ordinary labels.
var labelPool = []string{
	"bug", "feature", "frontend", "Backend",
	"todo", "ToDo", "doing", "Doing", "in progress", "In Progress",
	"review", "REVIEW", "testing", "Testing",
}

// DrawIssue draws a single issue with the given iid.
func DrawIssue(t *rapid.T, iid int) gitlab.Issue {
	labels := rapid.SliceOfN(rapid.SampledFrom(labelPool), 0, 4).Draw(t, "labels")
	opts := []IssueOption{Labels(labels...)}
	if rapid.Bool().Draw(t, "closed") {
		opts = append(opts, Closed())
	}
	return NewIssue(iid, opts...)
}

// DrawIssues draws a list of up to maxLen issues with distinct iids in
// arbitrary order.
func DrawIssues(t *rapid.T, maxLen int) []gitlab.Issue {
	iids := rapid.SliceOfNDistinct(rapid.IntRange(1, 500), 0, maxLen, rapid.ID[int]).Draw(t, "iids")
	issues := make([]gitlab.Issue, len(iids))
	for i, iid := range iids {
		issues[i] = DrawIssue(t, iid)
	}
	return issues
}
