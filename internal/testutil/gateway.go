package testutil

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// Call records one write received by FakeGateway.
type Call struct {
	Method    string
	ProjectID int
	IID       int
	Create    gitlab.CreateIssueOptions
	Update    gitlab.UpdateIssueOptions
}

// FakeGateway is an in-memory GitLab that applies writes the way the real
// API does. It is safe for concurrent use.
type FakeGateway struct {
	mu       sync.Mutex
	projects []gitlab.Project
	issues   map[int][]gitlab.Issue
	nextIID  map[int]int
	failures map[string]error
	calls    []Call
	block    chan struct{}
}

var _ gitlab.Gateway = (*FakeGateway)(nil)

// NewFakeGateway returns an empty fake.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		issues:   make(map[int][]gitlab.Issue),
		nextIID:  make(map[int]int),
		failures: make(map[string]error),
	}
}

// SetProjects replaces the member project list.
func (g *FakeGateway) SetProjects(projects ...gitlab.Project) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.projects = append([]gitlab.Project(nil), projects...)
}

// SetIssues replaces the issues of projectID.
func (g *FakeGateway) SetIssues(projectID int, issues []gitlab.Issue) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issues[projectID] = append([]gitlab.Issue(nil), issues...)
	for _, issue := range issues {
		if issue.IID >= g.nextIID[projectID] {
			g.nextIID[projectID] = issue.IID + 1
		}
	}
}

// FailNext makes the next call to method (e.g. "UpdateIssue") fail with err.
func (g *FakeGateway) FailNext(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[method] = err
}

// Block makes writes wait until Release is called.
func (g *FakeGateway) Block() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.block = make(chan struct{})
}

// Release unblocks writes held by Block.
func (g *FakeGateway) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.block != nil {
		close(g.block)
		g.block = nil
	}
}

// Calls returns the writes received so far.
func (g *FakeGateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// Issue returns the server-side copy of an issue.
func (g *FakeGateway) Issue(projectID, iid int) (gitlab.Issue, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, issue := range g.issues[projectID] {
		if issue.IID == iid {
			return issue.Clone(), true
		}
	}
	return gitlab.Issue{}, false
}

func (g *FakeGateway) failure(method string) error {
	err := g.failures[method]
	delete(g.failures, method)
	return err
}

func (g *FakeGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	block := g.block
	g.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notFound(path string) error {
	return &gitlab.HTTPError{StatusCode: http.StatusNotFound, StatusText: "Not Found", Path: path}
}

func (g *FakeGateway) ListProjects(_ context.Context) ([]gitlab.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("ListProjects"); err != nil {
		return nil, err
	}
	return append([]gitlab.Project{}, g.projects...), nil
}

func (g *FakeGateway) GetProject(_ context.Context, ref string) (gitlab.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("GetProject"); err != nil {
		return gitlab.Project{}, err
	}
	for _, p := range g.projects {
		if strconv.Itoa(p.ID) == ref || p.PathWithNamespace == ref {
			return p, nil
		}
	}
	return gitlab.Project{}, notFound("/projects/" + ref)
}

func (g *FakeGateway) ListIssues(_ context.Context, projectID int) ([]gitlab.Issue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("ListIssues"); err != nil {
		return nil, err
	}
	out := make([]gitlab.Issue, 0, len(g.issues[projectID]))
	for _, issue := range g.issues[projectID] {
		out = append(out, issue.Clone())
	}
	return out, nil
}

func (g *FakeGateway) GetIssue(_ context.Context, projectID, iid int) (gitlab.Issue, error) {
	if issue, ok := g.Issue(projectID, iid); ok {
		return issue, nil
	}
	return gitlab.Issue{}, notFound("/projects/" + strconv.Itoa(projectID) + "/issues/" + strconv.Itoa(iid))
}

func (g *FakeGateway) CreateIssue(ctx context.Context, projectID int, opts gitlab.CreateIssueOptions) (gitlab.Issue, error) {
	if err := g.wait(ctx); err != nil {
		return gitlab.Issue{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Method: "CreateIssue", ProjectID: projectID, Create: opts})
	if err := g.failure("CreateIssue"); err != nil {
		return gitlab.Issue{}, err
	}

	iid := g.nextIID[projectID]
	if iid == 0 {
		iid = 1
	}
	g.nextIID[projectID] = iid + 1
	labels := append([]string{}, opts.Labels...)
	issue := NewIssue(iid, Project(projectID), Title(opts.Title), Description(opts.Description), Labels(labels...))
	g.issues[projectID] = append([]gitlab.Issue{issue}, g.issues[projectID]...)
	return issue.Clone(), nil
}

func (g *FakeGateway) UpdateIssue(ctx context.Context, projectID, iid int, opts gitlab.UpdateIssueOptions) (gitlab.Issue, error) {
	if err := g.wait(ctx); err != nil {
		return gitlab.Issue{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Method: "UpdateIssue", ProjectID: projectID, IID: iid, Update: opts})
	if err := g.failure("UpdateIssue"); err != nil {
		return gitlab.Issue{}, err
	}

	for i, issue := range g.issues[projectID] {
		if issue.IID != iid {
			continue
		}
		if opts.Title != nil {
			issue.Title = *opts.Title
		}
		if opts.Description != nil {
			issue.Description = *opts.Description
		}
		if opts.Labels != nil {
			issue.Labels = append([]string{}, opts.Labels...)
		}
		switch opts.StateEvent {
		case gitlab.StateEventClose:
			issue.State = gitlab.StateClosed
		case gitlab.StateEventReopen:
			issue.State = gitlab.StateOpened
		}
		issue.UpdatedAt = issue.UpdatedAt.Add(1)
		g.issues[projectID][i] = issue
		return issue.Clone(), nil
	}
	return gitlab.Issue{}, notFound("/projects/" + strconv.Itoa(projectID) + "/issues/" + strconv.Itoa(iid))
}
