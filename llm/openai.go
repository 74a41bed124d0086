package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
)

// ChatClient is the subset of *openai.Client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI summarizes through any OpenAI-compatible chat completion API.
type OpenAI struct {
	Client      ChatClient
	Model       string
	Temperature float32
}

// NewOpenAI creates an OpenAI summarizer from cfg.
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAI{
		Client:      openai.NewClientWithConfig(clientCfg),
		Model:       cfg.Model,
		Temperature: float32(cfg.Temperature),
	}
}

// Summarize requests a JSON object reply. The content is returned as is;
// validating it is the caller's job.
func (o *OpenAI) Summarize(ctx context.Context, systemInstruction, digest string) (string, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: digest},
		},
		Temperature: o.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", models.NewDigestError(models.ErrCodeLLMFailure, "LLM returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, "", err)
	}
	return models.NewDigestError(models.ErrCodeLLMFailure, "LLM request failed", err)
}
