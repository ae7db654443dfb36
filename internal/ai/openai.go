package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jeffail/gabs"
)

var (
	ErrNotConfigured     = errors.New("ai engine is not configured")
	ErrEmptyCompletion   = errors.New("empty completion")
	ErrMalformedResponse = errors.New("malformed model response")
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (e *Engine) complete(ctx context.Context, temperature float64, maxTokens int, messages ...message) (string, error) {
	if !e.IsConfigured() {
		return "", ErrNotConfigured
	}

	res, err := e.client.R().
		WithContext(ctx).
		SetBody(completionRequest{
			Model:       e.Config.OpenAIModel,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}).
		SetResult(&completionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}

	if res.IsError() {
		return "", fmt.Errorf("chat completion failed with status %d: %s", res.StatusCode(), res.String())
	}

	completion := res.Result().(*completionResponse)
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	return content, nil
}

// parseJSONContent parses a model answer that is expected to be a JSON object. Models
// sometimes wrap it in a markdown code fence.
func parseJSONContent(content string) (*gabs.Container, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	parsed, err := gabs.ParseJSON([]byte(strings.TrimSpace(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return parsed, nil
}
