package gitlab

import (
	"context"
	"strconv"
	"time"

	"github.com/zjrosen/glboard/internal/cachemanager"
	"github.com/zjrosen/glboard/internal/log"
)

const (
	projectsKey       = "projects"
	issuesKeyPrefix   = "issues:"
	DefaultCacheTTL   = 2 * time.Minute
	cacheCleanupEvery = 10 * time.Minute
)

// CachedGateway serves project and issue lists from memory. Any write to a
// project drops that project's cached issue list.
type CachedGateway struct {
	next     Gateway
	ttl      time.Duration
	projects *cachemanager.ReadThroughCache[string, []Project, struct{}]
	issues   *cachemanager.ReadThroughCache[string, []Issue, int]
}

var _ Gateway = (*CachedGateway)(nil)

// NewCachedGateway wraps next. A non-positive ttl disables caching.
func NewCachedGateway(next Gateway, ttl time.Duration) *CachedGateway {
	skip := ttl <= 0
	projectCache := cachemanager.NewInMemoryCacheManager[string, []Project]("gitlab-projects", ttl, cacheCleanupEvery)
	issueCache := cachemanager.NewInMemoryCacheManager[string, []Issue]("gitlab-issues", ttl, cacheCleanupEvery)

	return &CachedGateway{
		next: next,
		ttl:  ttl,
		projects: cachemanager.NewReadThroughCache(projectCache,
			func(ctx context.Context, _ struct{}) ([]Project, error) {
				return next.ListProjects(ctx)
			}, skip),
		issues: cachemanager.NewReadThroughCache(issueCache,
			func(ctx context.Context, projectID int) ([]Issue, error) {
				return next.ListIssues(ctx, projectID)
			}, skip),
	}
}

func issuesKey(projectID int) string {
	return issuesKeyPrefix + strconv.Itoa(projectID)
}

// ListProjects returns the cached project list, loading it on a miss.
func (g *CachedGateway) ListProjects(ctx context.Context) ([]Project, error) {
	return g.projects.Get(ctx, projectsKey, struct{}{}, g.ttl)
}

// GetProject is never cached.
func (g *CachedGateway) GetProject(ctx context.Context, ref string) (Project, error) {
	return g.next.GetProject(ctx, ref)
}

// ListIssues returns a copy of the cached issue list so callers may mutate it.
func (g *CachedGateway) ListIssues(ctx context.Context, projectID int) ([]Issue, error) {
	issues, err := g.issues.Get(ctx, issuesKey(projectID), projectID, g.ttl)
	if err != nil {
		return nil, err
	}
	return cloneIssues(issues), nil
}

// GetIssue is never cached.
func (g *CachedGateway) GetIssue(ctx context.Context, projectID, iid int) (Issue, error) {
	return g.next.GetIssue(ctx, projectID, iid)
}

// RefreshIssues bypasses the cache and stores the fresh list.
func (g *CachedGateway) RefreshIssues(ctx context.Context, projectID int) ([]Issue, error) {
	issues, err := g.issues.Load(ctx, issuesKey(projectID), projectID, g.ttl)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatCache, "issues refreshed", "project", projectID, "count", len(issues))
	return cloneIssues(issues), nil
}

// RefreshProjects bypasses the cache and stores the fresh list. Cached issue
// lists are dropped as well so the next board opened starts fresh.
func (g *CachedGateway) RefreshProjects(ctx context.Context) ([]Project, error) {
	projects, err := g.projects.Load(ctx, projectsKey, struct{}{}, g.ttl)
	if err != nil {
		return nil, err
	}
	if n := g.issues.InvalidatePrefix(ctx, issuesKeyPrefix); n > 0 {
		log.Debug(log.CatCache, "issue lists dropped", "count", n)
	}
	return projects, nil
}

func (g *CachedGateway) CreateIssue(ctx context.Context, projectID int, opts CreateIssueOptions) (Issue, error) {
	issue, err := g.next.CreateIssue(ctx, projectID, opts)
	g.invalidate(ctx, projectID)
	return issue, err
}

func (g *CachedGateway) UpdateIssue(ctx context.Context, projectID, iid int, opts UpdateIssueOptions) (Issue, error) {
	issue, err := g.next.UpdateIssue(ctx, projectID, iid, opts)
	g.invalidate(ctx, projectID)
	return issue, err
}

func (g *CachedGateway) invalidate(ctx context.Context, projectID int) {
	g.issues.Invalidate(ctx, issuesKey(projectID))
}

// Refresh bypasses any cache in gw. Plain gateways just list again.
func Refresh(ctx context.Context, gw Gateway, projectID int) ([]Issue, error) {
	if r, ok := gw.(interface {
		RefreshIssues(context.Context, int) ([]Issue, error)
	}); ok {
		return r.RefreshIssues(ctx, projectID)
	}
	return gw.ListIssues(ctx, projectID)
}

// RefreshProjects is Refresh for the project list.
func RefreshProjects(ctx context.Context, gw Gateway) ([]Project, error) {
	if r, ok := gw.(interface {
		RefreshProjects(context.Context) ([]Project, error)
	}); ok {
		return r.RefreshProjects(ctx)
	}
	return gw.ListProjects(ctx)
}

func cloneIssues(in []Issue) []Issue {
	out := make([]Issue, len(in))
	for i, issue := range in {
		out[i] = issue.Clone()
	}
	return out
}
