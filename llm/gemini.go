package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
)

// Gemini summarizes through the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini summarizer from cfg. cfg.BaseURL is only
// honored when it does not point at the OpenAI default.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" && cfg.BaseURL != config.Default().LLM.BaseURL {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, models.NewDigestError(models.ErrCodeLLMFailure, "failed to create Gemini client", err)
	}
	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (g *Gemini) Summarize(ctx context.Context, systemInstruction, digest string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(digest),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.Code, apiErr.Message, err)
		}
		return "", models.NewDigestError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", models.NewDigestError(models.ErrCodeLLMFailure, "LLM returned no text", nil)
	}
	return text, nil
}
