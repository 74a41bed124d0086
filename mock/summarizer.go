package mock

import (
	"context"

	"github.com/use-agent/webdigest/pipeline"
)

var _ pipeline.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of pipeline.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, systemInstruction, digest string) (string, error)
}

func (s *Summarizer) Summarize(ctx context.Context, systemInstruction, digest string) (string, error) {
	return s.SummarizeFn(ctx, systemInstruction, digest)
}
