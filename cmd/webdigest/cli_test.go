package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/use-agent/webdigest/cmd/webdigest"
	"github.com/use-agent/webdigest/mock"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
)

type runnerFunc func(ctx context.Context, url string) (*pipeline.Outcome, error)

func (f runnerFunc) Run(ctx context.Context, url string) (*pipeline.Outcome, error) {
	return f(ctx, url)
}

func summary(id, link, name string) *models.PersistedSummary {
	return &models.PersistedSummary{
		ID:          id,
		WebsiteLink: link,
		Result:      models.SummaryResult{Name: name},
		CreatedAt:   time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists id, date, link and name", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.Store{
				FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) {
					return []*models.PersistedSummary{
						summary("s-1", "https://a.example", "Alpha"),
						summary("s-2", "https://b.example", "Beta"),
					}, nil
				},
			},
		}

		require.NoError(t, (&main.ListCmd{}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "s-1  2026-03-01T09:30:00Z  https://a.example  Alpha")
		assert.Contains(t, out, "s-2  2026-03-01T09:30:00Z  https://b.example  Beta")
	})

	t.Run("empty store prints a hint", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.Store{
				FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) { return nil, nil },
			},
		}

		require.NoError(t, (&main.ListCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "No summaries found")
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.Store{
				FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) {
					return []*models.PersistedSummary{summary("s-1", "https://a.example", "Alpha")}, nil
				},
			},
		}

		require.NoError(t, (&main.ListCmd{JSON: true}).Run(deps))

		var got []*models.PersistedSummary
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Alpha", got[0].Result.Name)
	})

	t.Run("store error goes to stderr", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Store: &mock.Store{
				FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) {
					return nil, models.NewDigestError(models.ErrCodePersistence, "database is locked", nil)
				},
			},
		}

		err := (&main.ListCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "database is locked")
	})
}

func TestSummarizeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the summary as json", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runner: runnerFunc(func(_ context.Context, url string) (*pipeline.Outcome, error) {
				gotURL = url
				return &pipeline.Outcome{
					Summary: summary("s-9", url, "Example"),
					Stats:   models.DigestStats{NavigationAttempts: 2},
				}, nil
			}),
		}

		require.NoError(t, (&main.SummarizeCmd{URL: "https://example.com"}).Run(deps))

		assert.Equal(t, "https://example.com", gotURL)
		var resp models.SummarizeResponse
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "s-9", resp.ID)
		assert.Equal(t, "Example", resp.Result.Name)
		assert.Equal(t, 2, resp.Stats.NavigationAttempts)
	})

	t.Run("failure prints the reason tag", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runner: runnerFunc(func(context.Context, string) (*pipeline.Outcome, error) {
				return nil, models.NewDigestError(models.ErrCodeNavigation, "failed to load https://example.com", nil)
			}),
		}

		err := (&main.SummarizeCmd{URL: "https://example.com"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, models.ErrCodeNavigation, models.ErrorCode(err))
		assert.Contains(t, stderr.String(), "[NAVIGATION_FAILURE]")
		assert.Empty(t, stdout.String())
	})
}

func TestMain_Run(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		stdout := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "summarize")
		assert.Contains(t, stdout.String(), "list")
	})

	t.Run("list opens the configured database", func(t *testing.T) {
		t.Setenv("WEBDIGEST_DB_PATH", filepath.Join(t.TempDir(), "test.db"))
		t.Setenv("WEBDIGEST_LOG_LEVEL", "error")
		stdout := &bytes.Buffer{}

		m := main.NewMain()
		err := m.Run(context.Background(), []string{"list"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No summaries found")
	})

	t.Run("unknown command", func(t *testing.T) {
		err := main.NewMain().Run(context.Background(), []string{"crawl"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})
}
