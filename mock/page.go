package mock

import (
	"context"
	"time"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/scraper"
)

var _ scraper.Page = (*Page)(nil)

// Page is a mock implementation of scraper.Page.
type Page struct {
	NavigateFn    func(ctx context.Context, url string, timeout time.Duration) error
	TitleFn       func(ctx context.Context) (string, error)
	DescriptionFn func(ctx context.Context) (string, bool, error)
	TextsFn       func(ctx context.Context, selector string) ([]string, error)
	InteractiveFn func(ctx context.Context, selector string) ([]cleaner.InteractiveElement, error)
	ImagesFn      func(ctx context.Context) ([]models.ImageCandidate, error)
	CloseFn       func() error
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return p.NavigateFn(ctx, url, timeout)
}

func (p *Page) Title(ctx context.Context) (string, error) {
	return p.TitleFn(ctx)
}

func (p *Page) Description(ctx context.Context) (string, bool, error) {
	return p.DescriptionFn(ctx)
}

func (p *Page) Texts(ctx context.Context, selector string) ([]string, error) {
	return p.TextsFn(ctx, selector)
}

func (p *Page) Interactive(ctx context.Context, selector string) ([]cleaner.InteractiveElement, error) {
	return p.InteractiveFn(ctx, selector)
}

func (p *Page) Images(ctx context.Context) ([]models.ImageCandidate, error) {
	return p.ImagesFn(ctx)
}

func (p *Page) Close() error {
	return p.CloseFn()
}

// EmptyPage returns a Page whose every query succeeds with no content.
// Callers override the Fn fields they care about.
func EmptyPage() *Page {
	return &Page{
		NavigateFn:    func(context.Context, string, time.Duration) error { return nil },
		TitleFn:       func(context.Context) (string, error) { return "", nil },
		DescriptionFn: func(context.Context) (string, bool, error) { return "", false, nil },
		TextsFn:       func(context.Context, string) ([]string, error) { return nil, nil },
		InteractiveFn: func(context.Context, string) ([]cleaner.InteractiveElement, error) { return nil, nil },
		ImagesFn:      func(context.Context) ([]models.ImageCandidate, error) { return nil, nil },
		CloseFn:       func() error { return nil },
	}
}
