package orgapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/theirongolddev/orgburn/internal/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// keyFetchConcurrency bounds parallel per-project requests.
const keyFetchConcurrency = 4

// ListProjects returns the organization's projects.
func (c *Client) ListProjects(ctx context.Context, includeArchived bool) ([]model.Project, error) {
	q := url.Values{}
	if includeArchived {
		q.Set("include_archived", "true")
	}
	return listAll[model.Project](ctx, c, "/organization/projects", q)
}

// ListUsers returns the organization's members.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	// Older responses nest the list under members.
	return listAll[model.User](ctx, c, "/organization/users", nil, "data", "members.data")
}

// ListProjectAPIKeys returns the API keys of one project.
func (c *Client) ListProjectAPIKeys(ctx context.Context, projectID string) ([]model.APIKey, error) {
	return listAll[model.APIKey](ctx, c, "/organization/projects/"+url.PathEscape(projectID)+"/api_keys", nil)
}

// ListAllAPIKeys returns the keys of every project, annotated with project id
// and name, in project order.
func (c *Client) ListAllAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	projects, err := c.ListProjects(ctx, false)
	if err != nil {
		return nil, err
	}

	perProject := make([][]model.APIKey, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(keyFetchConcurrency)
	for i, p := range projects {
		g.Go(func() error {
			keys, err := c.ListProjectAPIKeys(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("listing keys of %s: %w", p.ID, err)
			}
			for j := range keys {
				keys[j].ProjectID = p.ID
				keys[j].ProjectName = p.Name
			}
			perProject[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.APIKey
	for _, keys := range perProject {
		all = append(all, keys...)
	}
	return all, nil
}

// DeleteAPIKey deletes one project API key.
func (c *Client) DeleteAPIKey(ctx context.Context, projectID, keyID string) error {
	path := "/organization/projects/" + url.PathEscape(projectID) + "/api_keys/" + url.PathEscape(keyID)
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// BulkDeleteAPIKeys deletes keys one by one and reports each outcome. It does
// not stop at the first failure.
func (c *Client) BulkDeleteAPIKeys(ctx context.Context, refs []model.KeyRef) model.BulkDeleteResult {
	result := model.BulkDeleteResult{
		Success: []model.KeyRef{},
		Failed:  []model.KeyDeleteFailure{},
	}
	for _, ref := range refs {
		if err := c.DeleteAPIKey(ctx, ref.ProjectID, ref.APIKeyID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"project": ref.ProjectID,
				"key":     ref.APIKeyID,
			}).Debug("api key delete failed")
			result.Failed = append(result.Failed, model.KeyDeleteFailure{KeyRef: ref, Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, ref)
	}
	return result
}

// ListRateLimits returns the per-model rate limits of one project.
func (c *Client) ListRateLimits(ctx context.Context, projectID string) ([]model.RateLimit, error) {
	return listAll[model.RateLimit](ctx, c, "/organization/projects/"+url.PathEscape(projectID)+"/rate_limits", nil)
}

// UpdateRateLimit sets the requests-per-minute limit of one rate limit entry.
func (c *Client) UpdateRateLimit(ctx context.Context, projectID, rateLimitID string, maxRequestsPerMinute int) (model.RateLimit, error) {
	if maxRequestsPerMinute <= 0 {
		return model.RateLimit{}, fmt.Errorf("orgapi: max_requests_per_1_minute must be positive, got %d", maxRequestsPerMinute)
	}
	path := "/organization/projects/" + url.PathEscape(projectID) + "/rate_limits/" + url.PathEscape(rateLimitID)
	body, err := c.do(ctx, http.MethodPost, path, map[string]int{"max_requests_per_1_minute": maxRequestsPerMinute})
	if err != nil {
		return model.RateLimit{}, err
	}
	var rl model.RateLimit
	if err := json.Unmarshal(body, &rl); err != nil {
		return model.RateLimit{}, fmt.Errorf("orgapi: parsing rate limit: %w", err)
	}
	return rl, nil
}

// ProjectRateLimits pairs a project with its rate limits.
type ProjectRateLimits struct {
	Project model.Project     `json:"project"`
	Limits  []model.RateLimit `json:"rate_limits"`
}

// AllRateLimits returns the rate limits of every active project, in project order.
func (c *Client) AllRateLimits(ctx context.Context) ([]ProjectRateLimits, error) {
	projects, err := c.ListProjects(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectRateLimits, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(keyFetchConcurrency)
	for i, p := range projects {
		g.Go(func() error {
			limits, err := c.ListRateLimits(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("listing rate limits of %s: %w", p.ID, err)
			}
			out[i] = ProjectRateLimits{Project: p, Limits: limits}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyResult reports what applying a template changed.
type ApplyResult struct {
	Updated   []model.RateLimit `json:"updated"`
	Unchanged []string          `json:"unchanged"`
	Missing   []string          `json:"missing"` // template models the project has no limit for
}

// ApplyTemplate updates each of the project's rate limits whose model appears
// in the template. It stops at the first failed update and returns what was
// applied so far.
func (c *Client) ApplyTemplate(ctx context.Context, projectID string, tmpl model.RateLimitTemplate) (ApplyResult, error) {
	var result ApplyResult

	current, err := c.ListRateLimits(ctx, projectID)
	if err != nil {
		return result, err
	}
	byModel := make(map[string]model.RateLimit, len(current))
	for _, rl := range current {
		byModel[rl.Model] = rl
	}

	for _, want := range tmpl.Limits {
		rl, ok := byModel[want.Model]
		if !ok {
			result.Missing = append(result.Missing, want.Model)
			continue
		}
		if rl.MaxRequestsPer1Minute == want.MaxRequestsPer1Minute {
			result.Unchanged = append(result.Unchanged, want.Model)
			continue
		}
		updated, err := c.UpdateRateLimit(ctx, projectID, rl.ID, want.MaxRequestsPer1Minute)
		if err != nil {
			return result, fmt.Errorf("updating %s: %w", want.Model, err)
		}
		result.Updated = append(result.Updated, updated)
	}
	return result, nil
}
