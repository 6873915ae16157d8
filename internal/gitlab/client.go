package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/tracing"
)

const (
	apiPrefix = "/api/v4"

	// DefaultPerPage matches GitLab's own maximum page size.
	DefaultPerPage = 100
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	// maxPages caps pagination so a misbehaving server cannot loop forever.
	maxPages = 50

	// requestsPerSecond stays well under gitlab.com's authenticated limit.
	requestsPerSecond = 10
)

// Gateway is the set of GitLab operations the board performs.
type Gateway interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, ref string) (Project, error)
	ListIssues(ctx context.Context, projectID int) ([]Issue, error)
	GetIssue(ctx context.Context, projectID, iid int) (Issue, error)
	CreateIssue(ctx context.Context, projectID int, opts CreateIssueOptions) (Issue, error)
	UpdateIssue(ctx context.Context, projectID, iid int, opts UpdateIssueOptions) (Issue, error)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	PerPage    int
	HTTPClient *http.Client
	Tracer     trace.Tracer
}

// Client talks to the GitLab REST API through client-go, sending the token
// as a bearer token.
type Client struct {
	api     *gl.Client
	baseURL string
	perPage int
	tracer  trace.Tracer
}

var _ Gateway = (*Client)(nil)

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("gitlab: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	base = strings.TrimSuffix(base, apiPrefix) + apiPrefix

	perPage := cfg.PerPage
	if perPage <= 0 || perPage > DefaultPerPage {
		perPage = DefaultPerPage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// Failed writes are rolled back on the board, so a request is never
	// retried behind the user's back.
	api, err := gl.NewOAuthClient(cfg.Token,
		gl.WithBaseURL(base),
		gl.WithHTTPClient(httpClient),
		gl.WithoutRetries(),
		gl.WithCustomLimiter(rate.NewLimiter(requestsPerSecond, requestsPerSecond)),
	)
	if err != nil {
		return nil, fmt.Errorf("gitlab: %w", err)
	}

	return &Client{
		api:     api,
		baseURL: base,
		perPage: perPage,
		tracer:  cfg.Tracer,
	}, nil
}

// ListProjects returns the projects the token's user is a member of,
// most recently active first.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	opt := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: c.perPage},
		Membership:  gl.Ptr(true),
		Simple:      gl.Ptr(true),
		OrderBy:     gl.Ptr("last_activity_at"),
	}

	var projects []Project
	err := c.paginate(ctx, "/projects", &opt.ListOptions, func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error) {
		page, resp, err := c.api.Projects.ListProjects(opt, reqOpts...)
		for _, p := range page {
			projects = append(projects, fromAPIProject(p))
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject looks up a project by numeric ID or "group/name" path.
func (c *Client) GetProject(ctx context.Context, ref string) (Project, error) {
	var project Project
	err := c.call(ctx, http.MethodGet, "/projects/"+url.PathEscape(ref), func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error) {
		p, resp, err := c.api.Projects.GetProject(ref, nil, reqOpts...)
		if err == nil {
			project = fromAPIProject(p)
		}
		return resp, err
	})
	return project, err
}

// ListIssues returns every issue of the project in both states, newest first.
func (c *Client) ListIssues(ctx context.Context, projectID int) ([]Issue, error) {
	opt := &gl.ListProjectIssuesOptions{
		ListOptions: gl.ListOptions{PerPage: c.perPage},
		State:       gl.Ptr("all"),
		OrderBy:     gl.Ptr("created_at"),
		Sort:        gl.Ptr("desc"),
	}

	issues := []Issue{}
	err := c.paginate(ctx, issuesPath(projectID), &opt.ListOptions, func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error) {
		page, resp, err := c.api.Issues.ListProjectIssues(projectID, opt, reqOpts...)
		for _, is := range page {
			issues = append(issues, fromAPIIssue(is))
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// GetIssue fetches a single issue by its project-scoped iid.
func (c *Client) GetIssue(ctx context.Context, projectID, iid int) (Issue, error) {
	return c.issueCall(ctx, http.MethodGet, issuePath(projectID, iid), func(reqOpts []gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.GetIssue(projectID, iid, reqOpts...)
	})
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, projectID int, opts CreateIssueOptions) (Issue, error) {
	return c.issueCall(ctx, http.MethodPost, issuesPath(projectID), func(reqOpts []gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.CreateIssue(projectID, createOptions(opts), reqOpts...)
	})
}

// UpdateIssue edits an issue. Labels replace the issue's full label set.
func (c *Client) UpdateIssue(ctx context.Context, projectID, iid int, opts UpdateIssueOptions) (Issue, error) {
	return c.issueCall(ctx, http.MethodPut, issuePath(projectID, iid), func(reqOpts []gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.UpdateIssue(projectID, iid, updateOptions(opts), reqOpts...)
	})
}

// CloseIssue is UpdateIssue with state_event=close.
func (c *Client) CloseIssue(ctx context.Context, projectID, iid int) (Issue, error) {
	return c.UpdateIssue(ctx, projectID, iid, UpdateIssueOptions{StateEvent: StateEventClose})
}

// ReopenIssue is UpdateIssue with state_event=reopen.
func (c *Client) ReopenIssue(ctx context.Context, projectID, iid int) (Issue, error) {
	return c.UpdateIssue(ctx, projectID, iid, UpdateIssueOptions{StateEvent: StateEventReopen})
}

func issuesPath(projectID int) string {
	return "/projects/" + strconv.Itoa(projectID) + "/issues"
}

func issuePath(projectID, iid int) string {
	return issuesPath(projectID) + "/" + strconv.Itoa(iid)
}

type apiCall func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error)

func (c *Client) issueCall(ctx context.Context, method, path string, fn func([]gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error)) (Issue, error) {
	var issue Issue
	err := c.call(ctx, method, path, func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error) {
		is, resp, err := fn(reqOpts)
		if err == nil && is != nil {
			issue = fromAPIIssue(is)
		}
		return resp, err
	})
	return issue, err
}

// paginate follows GitLab's X-Next-Page header through list.Page.
func (c *Client) paginate(ctx context.Context, path string, list *gl.ListOptions, fn apiCall) error {
	list.Page = 1
	for i := 0; i < maxPages; i++ {
		var next int
		err := c.call(ctx, http.MethodGet, path, func(reqOpts []gl.RequestOptionFunc) (*gl.Response, error) {
			resp, err := fn(reqOpts)
			if resp != nil {
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		list.Page = next
	}
	return nil
}

// call runs one client-go request inside a client span and maps a rejected
// response to *HTTPError.
func (c *Client) call(ctx context.Context, method, path string, fn apiCall) (err error) {
	ctx, span := tracing.Start(ctx, c.tracer, tracing.SpanGitLabRequest, trace.SpanKindClient,
		attribute.String(tracing.AttrHTTPMethod, method),
		attribute.String(tracing.AttrHTTPPath, path),
	)
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	resp, err := fn([]gl.RequestOptionFunc{gl.WithContext(ctx)})
	if resp != nil && resp.Response != nil {
		span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))
		log.Debug(log.CatGitLab, "request", "method", method, "path", path,
			"status", resp.StatusCode, "duration", time.Since(start))
	}
	if err == nil {
		return nil
	}

	var errResp *gl.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		httpErr := newHTTPError(errResp.Response, method, path, readErrorMessage(bytes.NewReader(errResp.Body)))
		log.Warn(log.CatGitLab, "request rejected", "method", method, "path", path,
			"status", httpErr.StatusCode, "message", httpErr.Message)
		return httpErr
	}
	log.ErrorErr(log.CatGitLab, "request failed", err, "method", method, "path", path)
	return fmt.Errorf("%s %s: %w", method, path, err)
}

// readErrorMessage extracts GitLab's {"message": ...} or {"error": ...} body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return strings.TrimSpace(string(raw))
	}
	switch m := payload.Message.(type) {
	case string:
		return m
	case nil:
		return payload.Error
	default:
		encoded, _ := json.Marshal(m)
		return string(encoded)
	}
}

func createOptions(o CreateIssueOptions) *gl.CreateIssueOptions {
	opt := &gl.CreateIssueOptions{Title: gl.Ptr(o.Title)}
	if o.Description != "" {
		opt.Description = gl.Ptr(o.Description)
	}
	if len(o.Labels) > 0 {
		opt.Labels = labelOptions(o.Labels)
	}
	return opt
}

func updateOptions(o UpdateIssueOptions) *gl.UpdateIssueOptions {
	opt := &gl.UpdateIssueOptions{
		Title:       o.Title,
		Description: o.Description,
	}
	if o.Labels != nil {
		opt.Labels = labelOptions(o.Labels)
	}
	if o.StateEvent != "" {
		opt.StateEvent = gl.Ptr(string(o.StateEvent))
	}
	return opt
}

// labelOptions is sent comma joined. A non-nil empty set clears the labels.
func labelOptions(labels []string) *gl.LabelOptions {
	l := make(gl.LabelOptions, len(labels))
	copy(l, labels)
	return &l
}

func fromAPIProject(p *gl.Project) Project {
	if p == nil {
		return Project{}
	}
	return Project{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		PathWithNamespace: p.PathWithNamespace,
		WebURL:            p.WebURL,
	}
}

func fromAPIIssue(is *gl.Issue) Issue {
	issue := Issue{
		ID:          is.ID,
		IID:         is.IID,
		ProjectID:   is.ProjectID,
		Title:       is.Title,
		Description: is.Description,
		State:       State(is.State),
		Labels:      append([]string{}, is.Labels...),
		WebURL:      is.WebURL,
	}
	if is.Author != nil {
		issue.Author = User{ID: is.Author.ID, Name: is.Author.Name, Username: is.Author.Username, AvatarURL: is.Author.AvatarURL}
	}
	for _, a := range is.Assignees {
		if a != nil {
			issue.Assignees = append(issue.Assignees, User{ID: a.ID, Name: a.Name, Username: a.Username, AvatarURL: a.AvatarURL})
		}
	}
	if is.CreatedAt != nil {
		issue.CreatedAt = *is.CreatedAt
	}
	if is.UpdatedAt != nil {
		issue.UpdatedAt = *is.UpdatedAt
	}
	return issue
}
