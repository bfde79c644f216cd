package orgapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orgburn/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIKey: "sk-admin-test", OrgID: "org-1", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "   "})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestListProjects_PaginatesAndSendsHeaders(t *testing.T) {
	var mu sync.Mutex
	var afters []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-admin-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))
		assert.Equal(t, "/organization/projects", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		after := r.URL.Query().Get("after")
		mu.Lock()
		afters = append(afters, after)
		mu.Unlock()
		if after == "" {
			fmt.Fprint(w, `{"data":[{"id":"p1","name":"One","status":"active"}],"has_more":true,"last_id":"p1"}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"p2","name":"Two","status":"archived"}],"has_more":false,"last_id":"p2"}`)
	}))

	projects, err := c.ListProjects(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "One", projects[0].Name)
	assert.False(t, projects[1].Active())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "p1"}, afters)
}

func TestListUsers_MembersShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"members":{"data":[{"id":"user-1","name":"Ada","email":"ada@x.io"}]}}`)
	}))
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@x.io", users[0].Email)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := c.ListUsers(context.Background())
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"message":"upstream down"}}`)
	}))
	_, err := c.ListUsers(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestListAllAPIKeys_AnnotatesProjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/organization/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"p1","name":"One"},{"id":"p2","name":"Two"}],"has_more":false}`)
	})
	mux.HandleFunc("/organization/projects/p1/api_keys", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"key-a","name":"ci","redacted_value":"sk-...a"}],"has_more":false}`)
	})
	mux.HandleFunc("/organization/projects/p2/api_keys", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"key-b","name":"dev"},{"id":"key-c","name":"prod"}],"has_more":false}`)
	})
	c := newTestClient(t, mux)

	keys, err := c.ListAllAPIKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "key-a", keys[0].ID)
	assert.Equal(t, "One", keys[0].ProjectName)
	assert.Equal(t, "p2", keys[2].ProjectID)
	assert.Equal(t, "prod", keys[2].Name)
}

func TestBulkDeleteAPIKeys(t *testing.T) {
	var mu sync.Mutex
	var deleted []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if strings.HasSuffix(r.URL.Path, "/key-missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mu.Lock()
		deleted = append(deleted, r.URL.Path)
		mu.Unlock()
		fmt.Fprint(w, `{"object":"organization.project.api_key.deleted","deleted":true}`)
	}))

	result := c.BulkDeleteAPIKeys(context.Background(), []model.KeyRef{
		{ProjectID: "p1", APIKeyID: "key-a", KeyName: "ci"},
		{ProjectID: "p1", APIKeyID: "key-missing", KeyName: "gone"},
		{ProjectID: "p2", APIKeyID: "key-b", KeyName: "dev"},
	})

	require.Len(t, result.Success, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "key-missing", result.Failed[0].APIKeyID)
	assert.Equal(t, "gone", result.Failed[0].KeyName)
	mu.Lock()
	assert.Equal(t, []string{"/organization/projects/p1/api_keys/key-a", "/organization/projects/p2/api_keys/key-b"}, deleted)
	mu.Unlock()

	empty := c.BulkDeleteAPIKeys(context.Background(), nil)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":[],"failed":[]}`, string(data))
}

func TestUpdateRateLimit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/organization/projects/p1/rate_limits/rl-gpt-4o", r.URL.Path)
		var body map[string]int
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 250, body["max_requests_per_1_minute"])
		fmt.Fprintf(w, `{"id":"rl-gpt-4o","model":"gpt-4o","max_requests_per_1_minute":%d}`, body["max_requests_per_1_minute"])
	}))

	rl, err := c.UpdateRateLimit(context.Background(), "p1", "rl-gpt-4o", 250)
	require.NoError(t, err)
	assert.Equal(t, 250, rl.MaxRequestsPer1Minute)

	_, err = c.UpdateRateLimit(context.Background(), "p1", "rl-gpt-4o", 0)
	assert.Error(t, err)
}

func TestApplyTemplate(t *testing.T) {
	var mu sync.Mutex
	var updates []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /organization/projects/p1/rate_limits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"rl-a","model":"gpt-4o","max_requests_per_1_minute":100},
			{"id":"rl-b","model":"gpt-4o-mini","max_requests_per_1_minute":500}
		],"has_more":false}`)
	})
	mux.HandleFunc("POST /organization/projects/p1/rate_limits/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		updates = append(updates, r.PathValue("id"))
		mu.Unlock()
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		fmt.Fprintf(w, `{"id":%q,"model":"gpt-4o","max_requests_per_1_minute":%d}`, r.PathValue("id"), body["max_requests_per_1_minute"])
	})
	c := newTestClient(t, mux)

	result, err := c.ApplyTemplate(context.Background(), "p1", model.RateLimitTemplate{
		Name: "standard",
		Limits: []model.TemplateLimit{
			{Model: "gpt-4o", MaxRequestsPer1Minute: 300},
			{Model: "gpt-4o-mini", MaxRequestsPer1Minute: 500},
			{Model: "dall-e-3", MaxRequestsPer1Minute: 5},
		},
	})
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []string{"rl-a"}, updates)
	mu.Unlock()
	require.Len(t, result.Updated, 1)
	assert.Equal(t, 300, result.Updated[0].MaxRequestsPer1Minute)
	assert.Equal(t, []string{"gpt-4o-mini"}, result.Unchanged)
	assert.Equal(t, []string{"dall-e-3"}, result.Missing)
}

func TestAllRateLimits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/organization/projects", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"p1","name":"One"},{"id":"p2","name":"Two"}]}`)
	})
	mux.HandleFunc("/organization/projects/{id}/rate_limits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"id":"rl-%s","model":"gpt-4o","max_requests_per_1_minute":10}]}`, r.PathValue("id"))
	})
	c := newTestClient(t, mux)

	all, err := c.AllRateLimits(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p2", all[1].Project.ID)
	assert.Equal(t, "rl-p2", all[1].Limits[0].ID)
}
