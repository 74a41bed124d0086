package scraper

import (
	"context"
	"time"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/models"
)

// Navigable loads a URL into a page.
type Navigable interface {
	// Navigate loads url and waits until the network has been idle for
	// the source's idle window. It fails when timeout elapses first.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
}

// Queryable exposes read-only DOM queries against a loaded page.
type Queryable interface {
	// Title returns document.title.
	Title(ctx context.Context) (string, error)

	// Description returns the content of <meta name="description">.
	// found is false when the tag is absent.
	Description(ctx context.Context) (desc string, found bool, err error)

	// Texts returns the trimmed, non-empty visible text of every element
	// matching selector, in document order.
	Texts(ctx context.Context, selector string) ([]string, error)

	// Interactive returns every element matching selector as an
	// InteractiveElement, in document order.
	Interactive(ctx context.Context, selector string) ([]cleaner.InteractiveElement, error)

	// Images returns every <img> with its natural size.
	Images(ctx context.Context) ([]models.ImageCandidate, error)
}

// Page is one browser tab (or its static stand-in) owned by a single run.
// Close must be called exactly once on every path; further calls are no-ops.
type Page interface {
	Navigable
	Queryable
	Close() error
}
