// Package orgapi provides a client for the organization management API:
// projects, users, project API keys and per-model rate limits.
package orgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public organization API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	requestTimeout = 30 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	pageLimit      = 100
)

var (
	// ErrMissingKey indicates no admin API key was configured.
	ErrMissingKey = errors.New("orgapi: admin API key is not set")
	// ErrUnauthorized indicates the admin key is missing, expired or invalid.
	ErrUnauthorized = errors.New("orgapi: unauthorized (admin key invalid)")
	// ErrForbidden indicates the key lacks permission for the operation.
	ErrForbidden = errors.New("orgapi: forbidden")
	// ErrNotFound indicates the project, key or rate limit does not exist.
	ErrNotFound = errors.New("orgapi: not found")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("orgapi: rate limited")
)

// APIError is a non-2xx response that maps to no sentinel error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("orgapi: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("orgapi: status %d: %s", e.Status, e.Message)
}

// Config configures a Client.
type Config struct {
	APIKey            string
	OrgID             string
	BaseURL           string
	RequestsPerSecond float64 // 0 disables client-side pacing
	HTTPClient        *http.Client
}

// Client calls the organization management API.
type Client struct {
	apiKey  string
	orgID   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingKey
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		apiKey:  key,
		orgID:   strings.TrimSpace(cfg.OrgID),
		baseURL: base,
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("orgapi: waiting for rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("orgapi: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("orgapi: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.orgID != "" {
		req.Header.Set("OpenAI-Organization", c.orgID)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "orgburn/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orgapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("orgapi: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: gjson.GetBytes(data, "error.message").String()}
	}
	return data, nil
}

// listAll follows cursor pagination (limit, after, has_more, last_id) and
// decodes every page's item array. itemPaths are tried in order to locate the
// array in a page.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values, itemPaths ...string) ([]T, error) {
	if len(itemPaths) == 0 {
		itemPaths = []string{"data"}
	}
	var all []T
	after := ""
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", fmt.Sprint(pageLimit))
		if after != "" {
			q.Set("after", after)
		}

		body, err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		page := gjson.ParseBytes(body)
		var items gjson.Result
		for _, p := range itemPaths {
			if items = page.Get(p); items.IsArray() {
				break
			}
		}
		if !items.IsArray() {
			return nil, fmt.Errorf("orgapi: %s: unexpected response shape", path)
		}

		var batch []T
		if err := json.Unmarshal([]byte(items.Raw), &batch); err != nil {
			return nil, fmt.Errorf("orgapi: parsing %s: %w", path, err)
		}
		all = append(all, batch...)

		if !page.Get("has_more").Bool() {
			break
		}
		after = page.Get("last_id").String()
		if after == "" {
			break
		}
	}
	return all, nil
}
