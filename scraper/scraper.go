package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
)

// Scraper manages the global browser lifecycle and hands out pages.
// It is safe for concurrent use.
type Scraper struct {
	root        *rod.Browser
	browser     *rod.Browser // incognito context shared by all pages
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	activePages atomic.Int32
}

// NewScraper launches a headless browser and creates the page slot pool.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	if browserCfg.IgnoreCertErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewDigestError(
			models.ErrCodeBrowser,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	root := rod.New().ControlURL(controlURL)
	if err := root.Connect(); err != nil {
		return nil, models.NewDigestError(
			models.ErrCodeBrowser,
			"failed to connect to browser",
			err,
		)
	}

	if browserCfg.IgnoreCertErrors {
		if err := root.IgnoreCertErrors(true); err != nil {
			slog.Warn("failed to disable certificate checks", "error", err)
		}
	}

	browser, err := root.Incognito()
	if err != nil {
		_ = root.Close()
		return nil, models.NewDigestError(
			models.ErrCodeBrowser,
			"failed to create browser context",
			err,
		)
	}

	pool := rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	return &Scraper{
		root:       root,
		browser:    browser,
		pagePool:   pool,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}, nil
}

// Acquire opens a fresh tab in the shared browser context. It blocks while
// MaxPages tabs are open, until ctx is done. The returned Page frees its
// slot when closed.
//
// Stealth injection and the hijack router are installed before the first
// navigation; neither affects a page that has already loaded.
func (s *Scraper) Acquire(ctx context.Context) (Page, error) {
	// The pool only ever holds nil elements: it is a slot counter.
	select {
	case <-s.pagePool:
	case <-ctx.Done():
		return nil, models.NewDigestError(
			models.ErrCodeBrowser,
			"no free browser page",
			ctx.Err(),
		)
	}
	s.activePages.Add(1)
	release := func() {
		s.activePages.Add(-1)
		s.pagePool.Put(nil)
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		release()
		return nil, models.NewDigestError(
			models.ErrCodeBrowser,
			"failed to open browser page",
			err,
		)
	}

	if err := (proto.PageSetBypassCSP{Enabled: true}).Call(page); err != nil {
		slog.Warn("failed to bypass CSP, proceeding without", "error", err)
	}

	if s.browserCfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", err,
			)
		}
	}

	return &rodPage{
		page:    page,
		router:  setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds),
		idle:    s.scraperCfg.IdleWindow,
		release: release,
	}, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		Mode:        "rod",
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close disposes the browser context and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing browser context")
	if err := s.browser.Close(); err != nil {
		slog.Warn("failed to close browser context", "error", err)
	}
	slog.Info("scraper shutting down: closing browser")
	if err := s.root.Close(); err != nil {
		slog.Warn("failed to close browser", "error", err)
	}
	slog.Info("scraper shutdown complete")
}
