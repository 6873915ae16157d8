// Package mocks holds testify mocks shared across package tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/glboard/internal/gitlab"
)

// Gateway is a testify mock of gitlab.Gateway.
type Gateway struct {
	mock.Mock
}

var _ gitlab.Gateway = (*Gateway)(nil)

func (m *Gateway) ListProjects(ctx context.Context) ([]gitlab.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gitlab.Project), args.Error(1)
}

func (m *Gateway) GetProject(ctx context.Context, ref string) (gitlab.Project, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(gitlab.Project), args.Error(1)
}

func (m *Gateway) ListIssues(ctx context.Context, projectID int) ([]gitlab.Issue, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gitlab.Issue), args.Error(1)
}

func (m *Gateway) GetIssue(ctx context.Context, projectID, iid int) (gitlab.Issue, error) {
	args := m.Called(ctx, projectID, iid)
	return args.Get(0).(gitlab.Issue), args.Error(1)
}

func (m *Gateway) CreateIssue(ctx context.Context, projectID int, opts gitlab.CreateIssueOptions) (gitlab.Issue, error) {
	args := m.Called(ctx, projectID, opts)
	return args.Get(0).(gitlab.Issue), args.Error(1)
}

func (m *Gateway) UpdateIssue(ctx context.Context, projectID, iid int, opts gitlab.UpdateIssueOptions) (gitlab.Issue, error) {
	args := m.Called(ctx, projectID, iid, opts)
	return args.Get(0).(gitlab.Issue), args.Error(1)
}
