package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/webdigest/api"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/mock"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
)

type runnerFunc func(ctx context.Context, url string) (*pipeline.Outcome, error)

func (f runnerFunc) Run(ctx context.Context, url string) (*pipeline.Outcome, error) {
	return f(ctx, url)
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Auth.APIKeys = []string{"k1"}

	deps := api.Deps{
		Runner: runnerFunc(func(_ context.Context, url string) (*pipeline.Outcome, error) {
			return &pipeline.Outcome{Summary: &models.PersistedSummary{ID: "x", WebsiteLink: url}}, nil
		}),
		Store: &mock.Store{
			FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) { return nil, nil },
		},
		Pool: &mock.PageSource{},
	}
	return api.NewRouter(deps, cfg, time.Now())
}

func TestRouter(t *testing.T) {
	t.Parallel()

	r := newRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		body   string
		status int
	}{
		{"health needs no key", http.MethodGet, "/api/v1/health", "", "", http.StatusOK},
		{"summaries without key", http.MethodGet, "/api/v1/summaries", "", "", http.StatusUnauthorized},
		{"summaries", http.MethodGet, "/api/v1/summaries", "k1", "", http.StatusOK},
		{"summarize", http.MethodPost, "/api/v1/summarize", "k1", `{"url":"https://example.com"}`, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/scrape", "k1", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
		req.Header.Set("Content-Type", "application/json")
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.name)
	}
}
