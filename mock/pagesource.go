package mock

import (
	"context"

	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
	"github.com/use-agent/webdigest/scraper"
)

var _ pipeline.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of pipeline.PageSource.
type PageSource struct {
	AcquireFn func(ctx context.Context) (scraper.Page, error)
	StatsFn   func() models.PoolStats
}

func (s *PageSource) Acquire(ctx context.Context) (scraper.Page, error) {
	return s.AcquireFn(ctx)
}

func (s *PageSource) Stats() models.PoolStats {
	if s.StatsFn == nil {
		return models.PoolStats{Mode: "mock"}
	}
	return s.StatsFn()
}
