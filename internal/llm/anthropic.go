package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicModel   = "claude-3-5-haiku-20241022"
	anthropicVersion = "2023-06-01"

	// A reply lists at most a handful of type names.
	fallacyMaxTokens = 256
)

// AnthropicClient detects fallacies with the messages API.
type AnthropicClient struct {
	apiKey string
	opts   clientOptions
}

func NewAnthropicClient(apiKey string, opts ...Option) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		opts:   buildOptions(anthropicBaseURL, anthropicModel, opts),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) DetectFallacies(ctx context.Context, statement, parentStatement string) ([]domain.FallacyType, error) {
	req := anthropicRequest{
		Model:     c.opts.model,
		MaxTokens: fallacyMaxTokens,
		System:    fallacySystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: fallacyUserPrompt(statement, parentStatement)},
		},
	}
	header := http.Header{}
	header.Set("x-api-key", c.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	var resp anthropicResponse
	if err := postJSON(ctx, c.opts.httpClient, ProviderAnthropic, c.opts.baseURL+"/messages", header, req, &resp); err != nil {
		return nil, fmt.Errorf("detect fallacies: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("detect fallacies: anthropic API error: %s", resp.Error.Message)
	}
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			return parseFallacies(strings.TrimSpace(block.Text))
		}
	}
	return nil, fmt.Errorf("detect fallacies: anthropic API returned no text content")
}
