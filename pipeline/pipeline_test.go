package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/digest"
	"github.com/use-agent/webdigest/htmlpage"
	"github.com/use-agent/webdigest/mock"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
	"github.com/use-agent/webdigest/scraper"
)

const validReply = `{"name":"Example","summary":"A page.","labels":["demo"],"images":[],"keyPoints":[{"title":"Greeting","value":"Hello World"}],"usefulLinks":[],"relatedContent":[]}`

var testScraperCfg = config.ScraperConfig{
	NavigationTimeout:  time.Second,
	NavigationAttempts: 3,
	RunTimeout:         10 * time.Second,
}

// recorder collects everything the pipeline hands to its collaborators.
type recorder struct {
	mu        sync.Mutex
	acquires  int
	navigates int
	closes    int
	digests   []string
	systems   []string
	inserted  []*models.PersistedSummary
	states    []pipeline.State
}

func (r *recorder) source(page scraper.Page, acquireErr error) *mock.PageSource {
	return &mock.PageSource{
		AcquireFn: func(context.Context) (scraper.Page, error) {
			r.mu.Lock()
			r.acquires++
			r.mu.Unlock()
			if acquireErr != nil {
				return nil, acquireErr
			}
			return &countingPage{Page: page, r: r}, nil
		},
	}
}

func (r *recorder) summarizer(reply string, err error) *mock.Summarizer {
	return &mock.Summarizer{
		SummarizeFn: func(_ context.Context, system, d string) (string, error) {
			r.mu.Lock()
			r.systems = append(r.systems, system)
			r.digests = append(r.digests, d)
			r.mu.Unlock()
			return reply, err
		},
	}
}

func (r *recorder) store(err error) *mock.Store {
	return &mock.Store{
		InsertFn: func(_ context.Context, s *models.PersistedSummary) error {
			if err != nil {
				return err
			}
			r.mu.Lock()
			defer r.mu.Unlock()
			s.ID = fmt.Sprintf("id-%d", len(r.inserted)+1)
			s.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			r.inserted = append(r.inserted, s)
			return nil
		},
		FindAllFn: func(context.Context) ([]*models.PersistedSummary, error) { return r.inserted, nil },
		FindLatestFn: func(_ context.Context, link string) (*models.PersistedSummary, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i := len(r.inserted) - 1; i >= 0; i-- {
				if r.inserted[i].WebsiteLink == link {
					return r.inserted[i], nil
				}
			}
			return nil, nil
		},
	}
}

func (r *recorder) pipeline(source pipeline.PageSource, summarizer pipeline.Summarizer, store pipeline.Store) *pipeline.Pipeline {
	p := pipeline.New(source, summarizer, store, testScraperCfg, config.LimitsConfig{})
	p.OnTransition = func(_ string, _, to pipeline.State) {
		r.mu.Lock()
		r.states = append(r.states, to)
		r.mu.Unlock()
	}
	return p
}

// countingPage counts Navigate and Close calls on the wrapped page.
type countingPage struct {
	scraper.Page
	r *recorder
}

func (c *countingPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	c.r.mu.Lock()
	c.r.navigates++
	c.r.mu.Unlock()
	return c.Page.Navigate(ctx, url, timeout)
}

func (c *countingPage) Close() error {
	c.r.mu.Lock()
	c.r.closes++
	c.r.mu.Unlock()
	return c.Page.Close()
}

func TestRun_HeadingOnlyPage(t *testing.T) {
	t.Parallel()

	page, err := htmlpage.FromHTML("https://example.com", "<html><body><h1>Hello World</h1></body></html>")
	require.NoError(t, err)

	rec := &recorder{}
	p := rec.pipeline(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil))

	out, err := p.Run(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.Len(t, rec.digests, 1)
	sent := rec.digests[0]
	assert.Contains(t, sent, "\nHeadings: hello world\n")
	assert.Contains(t, sent, "\nDescription: \n")
	assert.Contains(t, sent, "\nUseful Links: \n")
	assert.True(t, strings.HasSuffix(sent, "\nBest Images: "))
	assert.Equal(t, digest.SystemInstruction, rec.systems[0])

	want, err := digest.ParseResult(validReply)
	require.NoError(t, err)
	require.Len(t, rec.inserted, 1)
	assert.Equal(t, *want, rec.inserted[0].Result)
	assert.Equal(t, "https://example.com", rec.inserted[0].WebsiteLink)
	assert.Len(t, rec.inserted[0].Fingerprint, 16)

	assert.Same(t, rec.inserted[0], out.Summary)
	assert.Equal(t, 1, out.Stats.NavigationAttempts)
	assert.Equal(t, 1, out.Stats.Headings)
	assert.Zero(t, out.Stats.Links)
	assert.Positive(t, out.Stats.DigestTokens)

	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, []pipeline.State{
		pipeline.Navigating,
		pipeline.Extracting,
		pipeline.Cleaning,
		pipeline.BuildingDigest,
		pipeline.AwaitingSummary,
		pipeline.Done,
	}, rec.states)
}

func TestRun_NavigationExhausted(t *testing.T) {
	t.Parallel()

	page := mock.EmptyPage()
	page.NavigateFn = func(context.Context, string, time.Duration) error {
		return errors.New("navigation timeout of 1000 ms exceeded")
	}

	rec := &recorder{}
	p := rec.pipeline(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil))
	run := p.NewRun("https://example.com")

	out, err := run.Execute(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, models.ErrCodeNavigation, models.ErrorCode(err))

	assert.Equal(t, pipeline.Failed, run.State())
	assert.Equal(t, err, run.Err())
	assert.Equal(t, 3, rec.navigates)
	assert.Equal(t, 1, rec.acquires)
	assert.Equal(t, 1, rec.closes, "page closed exactly once")
	assert.Empty(t, rec.digests)
	assert.Empty(t, rec.inserted)
}

func TestRun_RunDeadlineSparesNavigationAttempts(t *testing.T) {
	t.Parallel()

	// Default timings scaled down: the run deadline is shorter than the
	// total navigation budget, yet every attempt still gets its turn.
	def := config.Default().Scraper
	cfg := testScraperCfg
	cfg.NavigationAttempts = def.NavigationAttempts
	cfg.NavigationTimeout = def.NavigationTimeout / 1000
	cfg.RunTimeout = def.RunTimeout / 1000
	require.Less(t, cfg.RunTimeout, time.Duration(cfg.NavigationAttempts)*cfg.NavigationTimeout)

	page := mock.EmptyPage()
	page.NavigateFn = func(ctx context.Context, _ string, timeout time.Duration) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	rec := &recorder{}
	p := pipeline.New(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil), cfg, config.LimitsConfig{})

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeNavigation, models.ErrorCode(err))
	assert.Equal(t, def.NavigationAttempts, rec.navigates)
	assert.Empty(t, rec.digests)
}

func TestRun_FlagsNearDuplicateOfPreviousSummary(t *testing.T) {
	t.Parallel()

	page, err := htmlpage.FromHTML("https://example.com", "<html><body><h1>Hello World</h1><p>Same text every time.</p></body></html>")
	require.NoError(t, err)

	rec := &recorder{}
	p := rec.pipeline(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil))

	first, err := p.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, first.NearDuplicateOf)

	second, err := p.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, first.Summary.ID, second.NearDuplicateOf)
	assert.Equal(t, first.Summary.Fingerprint, second.Summary.Fingerprint)
	require.Len(t, rec.inserted, 2, "near-duplicates are still persisted")
}

func TestRun_IgnoresMalformedPreviousFingerprint(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	store := rec.store(nil)
	store.FindLatestFn = func(context.Context, string) (*models.PersistedSummary, error) {
		return &models.PersistedSummary{ID: "old", Fingerprint: "not-hex"}, nil
	}
	p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer(validReply, nil), store)

	out, err := p.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, out.NearDuplicateOf)
}

func TestRun_AcquireFails(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	acquireErr := models.NewDigestError(models.ErrCodeBrowser, "browser crashed", nil)
	p := rec.pipeline(rec.source(nil, acquireErr), rec.summarizer(validReply, nil), rec.store(nil))

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeBrowser, models.ErrorCode(err))
	assert.Equal(t, 1, rec.acquires)
	assert.Zero(t, rec.closes)
}

func TestRun_ImageRanking(t *testing.T) {
	t.Parallel()

	page := mock.EmptyPage()
	page.ImagesFn = func(context.Context) ([]models.ImageCandidate, error) {
		images := make([]models.ImageCandidate, 12)
		for i := range images {
			side := (i*7)%12 + 1
			images[i] = models.ImageCandidate{
				Src: fmt.Sprintf("img-%d.png", side), Alt: fmt.Sprintf("alt %d", side),
				Width: side, Height: side,
			}
		}
		return images, nil
	}

	rec := &recorder{}
	p := rec.pipeline(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil))

	out, err := p.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 10, out.Stats.Images)

	want := make([]string, 0, 10)
	for side := 12; side >= 3; side-- {
		want = append(want, fmt.Sprintf("image alt - alt %d, image src - img-%d.png", side, side))
	}
	assert.Contains(t, rec.digests[0], "\nBest Images: "+strings.Join(want, ", "))
}

func TestRun_InvalidSummaryNotPersisted(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer("{not json", nil), rec.store(nil))

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeSummarization, models.ErrorCode(err))
	assert.Empty(t, rec.inserted)
	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, pipeline.Failed, rec.states[len(rec.states)-1])
}

func TestRun_SummarizerError(t *testing.T) {
	t.Parallel()

	cause := models.NewDigestError(models.ErrCodeLLMRateLimited, "slow down", nil)
	rec := &recorder{}
	p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer("", cause), rec.store(nil))

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeSummarization, models.ErrorCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, rec.inserted)
}

func TestRun_PersistenceFailure(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer(validReply, nil), rec.store(errors.New("disk full")))

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodePersistence, models.ErrorCode(err))
	assert.Equal(t, 1, rec.closes)
}

func TestRun_ExtractionFailure(t *testing.T) {
	t.Parallel()

	page := mock.EmptyPage()
	page.TextsFn = func(context.Context, string) ([]string, error) {
		return nil, errors.New("execution context was destroyed")
	}

	rec := &recorder{}
	p := rec.pipeline(rec.source(page, nil), rec.summarizer(validReply, nil), rec.store(nil))

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeExtraction, models.ErrorCode(err))
	assert.Empty(t, rec.digests)
	assert.Equal(t, 1, rec.closes)
}

func TestRun_MissingURL(t *testing.T) {
	t.Parallel()

	for _, url := range []string{"", "   "} {
		rec := &recorder{}
		p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer(validReply, nil), rec.store(nil))

		_, err := p.Run(context.Background(), url)
		assert.Equal(t, models.ErrCodeMissingURL, models.ErrorCode(err))
		assert.Zero(t, rec.acquires, "nothing acquired for a missing url")
		assert.Equal(t, []pipeline.State{pipeline.Failed}, rec.states)
	}
}

func TestRun_SingleShot(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := rec.pipeline(rec.source(mock.EmptyPage(), nil), rec.summarizer(validReply, nil), rec.store(nil))
	run := p.NewRun("https://example.com")

	_, err := run.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.Done, run.State())

	_, err = run.Execute(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrRunUsed)
	assert.Equal(t, 1, rec.acquires)
}

func TestRun_TimeoutReachesSummarizer(t *testing.T) {
	t.Parallel()

	cfg := testScraperCfg
	cfg.RunTimeout = 50 * time.Millisecond

	rec := &recorder{}
	summarizer := &mock.Summarizer{
		SummarizeFn: func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	p := pipeline.New(rec.source(mock.EmptyPage(), nil), summarizer, rec.store(nil), cfg, config.LimitsConfig{})

	_, err := p.Run(context.Background(), "https://example.com")
	assert.Equal(t, models.ErrCodeSummarization, models.ErrorCode(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "awaiting_summary", pipeline.AwaitingSummary.String())
	assert.Equal(t, "unknown", pipeline.State(42).String())
	assert.True(t, pipeline.Done.Terminal())
	assert.False(t, pipeline.Cleaning.Terminal())
}
