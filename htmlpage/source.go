package htmlpage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/scraper"
)

// Source hands out static pages, at most MaxPages at a time.
type Source struct {
	client   *http.Client
	slots    *semaphore.Weighted
	maxPages int
	active   atomic.Int32
}

// NewSource creates a Source from the browser configuration.
func NewSource(cfg config.BrowserConfig) *Source {
	maxPages := max(cfg.MaxPages, 1)
	return &Source{
		client:   newClient(cfg.DefaultProxy, cfg.IgnoreCertErrors),
		slots:    semaphore.NewWeighted(int64(maxPages)),
		maxPages: maxPages,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Source) Acquire(ctx context.Context) (scraper.Page, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, models.NewDigestError(models.ErrCodeBrowser, "no free page", err)
	}
	s.active.Add(1)

	p := New(func(ctx context.Context, u string) (io.Reader, *url.URL, error) {
		return fetch(ctx, s.client, u)
	})
	p.release = func() {
		s.active.Add(-1)
		s.slots.Release(1)
	}
	return p, nil
}

func (s *Source) Stats() models.PoolStats {
	return models.PoolStats{
		Mode:        "static",
		MaxPages:    s.maxPages,
		ActivePages: int(s.active.Load()),
	}
}

// Close drops idle connections.
func (s *Source) Close() {
	s.client.CloseIdleConnections()
}
