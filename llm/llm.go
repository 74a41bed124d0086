// Package llm adapts hosted language models to the summarizer contract:
// a system instruction and a digest in, raw JSON text out.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
)

// Summarizer is implemented by every provider in this package.
type Summarizer interface {
	Summarize(ctx context.Context, systemInstruction, digest string) (string, error)
}

// New returns the summarizer selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Summarizer, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// classifyStatus maps a provider HTTP status to an LLM error code.
func classifyStatus(statusCode int, msg string, err error) *models.DigestError {
	if msg == "" {
		msg = "LLM API error"
	}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewDigestError(models.ErrCodeLLMAuthFailure, msg, err)
	case statusCode == http.StatusTooManyRequests:
		return models.NewDigestError(models.ErrCodeLLMRateLimited, msg, err)
	default:
		return models.NewDigestError(models.ErrCodeLLMFailure, fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), err)
	}
}
