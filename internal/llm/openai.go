package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	chatModel     = "gpt-4o-mini"
)

// OpenAIClient detects fallacies with the chat completions API.
type OpenAIClient struct {
	apiKey string
	opts   clientOptions
}

func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		opts:   buildOptions(openAIBaseURL, chatModel, opts),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) DetectFallacies(ctx context.Context, statement, parentStatement string) ([]domain.FallacyType, error) {
	req := chatRequest{
		Model: c.opts.model,
		Messages: []chatMessage{
			{Role: "system", Content: fallacySystemPrompt},
			{Role: "user", Content: fallacyUserPrompt(statement, parentStatement)},
		},
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var resp chatResponse
	if err := postJSON(ctx, c.opts.httpClient, ProviderOpenAI, c.opts.baseURL+"/chat/completions", header, req, &resp); err != nil {
		return nil, fmt.Errorf("detect fallacies: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("detect fallacies: openai API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("detect fallacies: openai API returned no choices")
	}
	return parseFallacies(strings.TrimSpace(resp.Choices[0].Message.Content))
}
