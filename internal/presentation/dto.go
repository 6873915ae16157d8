// Package presentation shapes domain values for the headless CLI commands.
package presentation

import (
	"time"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
)

// ProjectDTO represents a project for presentation
type ProjectDTO struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	Description       string `json:"description,omitempty"`
	WebURL            string `json:"web_url"`
}

// IssueDTO represents an issue together with the board column it lands in
type IssueDTO struct {
	IID       int       `json:"iid"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Column    string    `json:"column"`
	Labels    []string  `json:"labels"`
	Author    string    `json:"author,omitempty"`
	Assignees []string  `json:"assignees"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	WebURL    string    `json:"web_url"`
}

// FromProject converts a GitLab project to a DTO
func FromProject(p gitlab.Project) ProjectDTO {
	return ProjectDTO{
		ID:                p.ID,
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		Description:       p.Description,
		WebURL:            p.WebURL,
	}
}

// FromProjects converts a slice of projects to DTOs
func FromProjects(projects []gitlab.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = FromProject(p)
	}
	return dtos
}

// FromIssue converts an issue to a DTO, classifying its column
func FromIssue(is gitlab.Issue) IssueDTO {
	labels := is.Labels
	if labels == nil {
		labels = []string{}
	}
	assignees := make([]string, len(is.Assignees))
	for i, a := range is.Assignees {
		assignees[i] = a.Username
	}
	return IssueDTO{
		IID:       is.IID,
		Title:     is.Title,
		State:     string(is.State),
		Column:    string(kanban.Classify(is)),
		Labels:    labels,
		Author:    is.Author.Username,
		Assignees: assignees,
		CreatedAt: is.CreatedAt,
		UpdatedAt: is.UpdatedAt,
		WebURL:    is.WebURL,
	}
}

// FromIssues converts a slice of issues to DTOs, optionally keeping only
// one column
func FromIssues(issues []gitlab.Issue, only kanban.Column) []IssueDTO {
	dtos := make([]IssueDTO, 0, len(issues))
	for _, is := range issues {
		if only != "" && kanban.Classify(is) != only {
			continue
		}
		dtos = append(dtos, FromIssue(is))
	}
	return dtos
}
