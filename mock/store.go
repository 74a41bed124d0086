package mock

import (
	"context"

	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
)

var _ pipeline.Store = (*Store)(nil)

// Store is a mock implementation of pipeline.Store.
type Store struct {
	InsertFn  func(ctx context.Context, s *models.PersistedSummary) error
	FindAllFn func(ctx context.Context) ([]*models.PersistedSummary, error)

	// FindLatestFn may be nil, in which case no previous summary exists.
	FindLatestFn func(ctx context.Context, websiteLink string) (*models.PersistedSummary, error)
}

func (s *Store) Insert(ctx context.Context, summary *models.PersistedSummary) error {
	return s.InsertFn(ctx, summary)
}

func (s *Store) FindAll(ctx context.Context) ([]*models.PersistedSummary, error) {
	return s.FindAllFn(ctx)
}

func (s *Store) FindLatest(ctx context.Context, websiteLink string) (*models.PersistedSummary, error) {
	if s.FindLatestFn == nil {
		return nil, nil
	}
	return s.FindLatestFn(ctx, websiteLink)
}
