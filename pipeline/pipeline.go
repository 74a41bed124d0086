// Package pipeline drives one URL from page load to a persisted summary.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/digest"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/scraper"
	"github.com/use-agent/webdigest/simhash"
)

// PageSource hands out pages. Every acquired page must be closed.
type PageSource interface {
	Acquire(ctx context.Context) (scraper.Page, error)
	Stats() models.PoolStats
}

// Summarizer turns a digest into the raw JSON text of a summary.
type Summarizer interface {
	Summarize(ctx context.Context, systemInstruction, digest string) (string, error)
}

// Store persists summaries.
type Store interface {
	Insert(ctx context.Context, s *models.PersistedSummary) error
	FindAll(ctx context.Context) ([]*models.PersistedSummary, error)
	FindLatest(ctx context.Context, websiteLink string) (*models.PersistedSummary, error)
}

// nearDuplicateDistance is the largest fingerprint distance at which a
// digest counts as unchanged since the previous summary of its URL.
const nearDuplicateDistance = 3

// ErrRunUsed is returned when a Run is executed a second time.
var ErrRunUsed = errors.New("pipeline: run already executed")

// Pipeline holds the collaborators shared by all runs. It owns none of
// them: creating and shutting them down is the caller's job.
type Pipeline struct {
	source     PageSource
	summarizer Summarizer
	store      Store
	navigator  *scraper.Navigator
	extractor  *scraper.Extractor
	runTimeout time.Duration

	// OnTransition, when set, observes every state change of every run.
	OnTransition func(url string, from, to State)
}

// New creates a Pipeline.
func New(source PageSource, summarizer Summarizer, store Store, cfg config.ScraperConfig, limits config.LimitsConfig) *Pipeline {
	return &Pipeline{
		source:     source,
		summarizer: summarizer,
		store:      store,
		navigator:  scraper.NewNavigator(cfg.NavigationAttempts, cfg.NavigationTimeout, cfg.RetryDelay),
		extractor:  scraper.NewExtractor(limits, cfg.ConcurrentExtraction),
		runTimeout: cfg.RunTimeout,
	}
}

// Outcome is the result of a successful run.
type Outcome struct {
	Summary *models.PersistedSummary
	Stats   models.DigestStats
	Timing  models.TimingInfo

	// NearDuplicateOf is the ID of the previous summary of the same URL
	// when its digest fingerprint is within nearDuplicateDistance.
	NearDuplicateOf string
}

// Run summarizes url with a fresh single-shot run.
func (p *Pipeline) Run(ctx context.Context, url string) (*Outcome, error) {
	return p.NewRun(url).Execute(ctx)
}

// Run is one pass of the pipeline over one URL.
type Run struct {
	p   *Pipeline
	url string

	used  atomic.Bool
	mu    sync.Mutex
	state State
	err   error
}

// NewRun prepares a run for url. Nothing is acquired until Execute.
func (p *Pipeline) NewRun(url string) *Run {
	return &Run{p: p, url: strings.TrimSpace(url)}
}

// State returns the current state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error that moved the run to Failed, if any.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Execute drives the run to Done or Failed. It can be called once.
func (r *Run) Execute(ctx context.Context) (*Outcome, error) {
	if !r.used.CompareAndSwap(false, true) {
		return nil, ErrRunUsed
	}
	start := time.Now()

	if r.url == "" {
		return nil, r.fail(models.NewDigestError(models.ErrCodeMissingURL, "url is required", nil))
	}

	out := &Outcome{}

	// ── Navigating ───────────────────────────────────────────────────
	r.transition(Navigating)
	page, err := r.p.source.Acquire(ctx)
	if err != nil {
		return nil, r.fail(err)
	}
	release := sync.OnceFunc(func() {
		if err := page.Close(); err != nil {
			slog.Warn("failed to close page", "url", r.url, "error", err)
		}
	})
	defer release()

	attempts, err := r.p.navigator.Navigate(ctx, page, r.url)
	out.Stats.NavigationAttempts = attempts
	out.Timing.NavigationMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, r.fail(err)
	}

	// Navigation is bounded by the navigator's own per-attempt timeouts,
	// so the run deadline starts here and covers the remaining stages.
	if r.p.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.p.runTimeout)
		defer cancel()
	}

	// ── Extracting ───────────────────────────────────────────────────
	r.transition(Extracting)
	extractStart := time.Now()
	sig, err := r.p.extractor.Extract(ctx, page)
	if err != nil {
		return nil, r.fail(err)
	}
	// The page is not needed past this point.
	release()

	// ── Cleaning ─────────────────────────────────────────────────────
	r.transition(Cleaning)
	headings := cleaner.CleanTexts(sig.Headings)
	lists := cleaner.CleanTexts(sig.Lists)
	rawText := cleaner.CleanTexts(sig.RawText)

	// ── BuildingDigest ───────────────────────────────────────────────
	r.transition(BuildingDigest)
	d := digest.Build(r.url, sig.Title, sig.Description, headings, lists, rawText, sig.Links, sig.Images)
	out.Stats.Headings = len(headings)
	out.Stats.Paragraphs = len(sig.Paragraphs)
	out.Stats.Lists = len(lists)
	out.Stats.RawText = len(rawText)
	out.Stats.Links = len(sig.Links)
	out.Stats.Images = len(sig.Images)
	out.Stats.DigestTokens = d.Tokens
	out.Timing.ExtractionMs = time.Since(extractStart).Milliseconds()

	// ── AwaitingSummary ──────────────────────────────────────────────
	r.transition(AwaitingSummary)
	summaryStart := time.Now()
	raw, err := r.p.summarizer.Summarize(ctx, digest.SystemInstruction, d.Prompt())
	out.Timing.SummarizationMs = time.Since(summaryStart).Milliseconds()
	if err != nil {
		return nil, r.fail(models.NewDigestError(models.ErrCodeSummarization, "summarizer call failed", err))
	}
	result, err := digest.ParseResult(raw)
	if err != nil {
		return nil, r.fail(err)
	}

	fp := simhash.Fingerprint(d.Text)
	out.NearDuplicateOf = r.nearDuplicate(ctx, fp)
	summary := &models.PersistedSummary{
		WebsiteLink: r.url,
		Result:      *result,
		Fingerprint: simhash.Hex(fp),
	}
	if err := r.p.store.Insert(ctx, summary); err != nil {
		if models.ErrorCode(err) != models.ErrCodePersistence {
			err = models.NewDigestError(models.ErrCodePersistence, "failed to persist summary", err)
		}
		return nil, r.fail(err)
	}

	out.Summary = summary
	out.Timing.TotalMs = time.Since(start).Milliseconds()
	r.transition(Done)
	slog.Info("summary created",
		"url", r.url,
		"id", summary.ID,
		"attempts", attempts,
		"digest_tokens", d.Tokens,
		"total_ms", out.Timing.TotalMs,
	)
	return out, nil
}

// nearDuplicate compares fp with the newest stored summary of the run's
// URL and returns that summary's ID when the two are near-identical. The
// lookup is advisory: failures are logged and yield "".
func (r *Run) nearDuplicate(ctx context.Context, fp uint64) string {
	prev, err := r.p.store.FindLatest(ctx, r.url)
	if err != nil {
		slog.Warn("failed to look up previous summary", "url", r.url, "error", err)
		return ""
	}
	if prev == nil || prev.Fingerprint == "" {
		return ""
	}
	prevFP, err := simhash.ParseHex(prev.Fingerprint)
	if err != nil {
		slog.Warn("stored fingerprint is malformed", "url", r.url, "id", prev.ID, "error", err)
		return ""
	}
	if !simhash.Similar(fp, prevFP, nearDuplicateDistance) {
		return ""
	}
	slog.Info("near-duplicate of previous summary",
		"url", r.url,
		"previous_id", prev.ID,
		"distance", simhash.Distance(fp, prevFP),
	)
	return prev.ID
}

func (r *Run) transition(to State) {
	r.mu.Lock()
	from := r.state
	r.state = to
	r.mu.Unlock()

	slog.Debug("run state", "url", r.url, "from", from.String(), "to", to.String())
	if r.p.OnTransition != nil {
		r.p.OnTransition(r.url, from, to)
	}
}

// fail moves the run to Failed and returns err for the caller.
func (r *Run) fail(err error) error {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.transition(Failed)
	slog.Warn("run failed", "url", r.url, "code", models.ErrorCode(err), "error", err)
	return err
}
