package llm

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient returns the fallacy detector for provider. Real providers need
// an API key; opts are ignored by the mock.
func NewClient(provider, apiKey string, opts ...Option) (domain.FallacyDetector, error) {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("an API key is required for the %s fallacy detector", provider)
		}
		if provider == ProviderAnthropic {
			return NewAnthropicClient(apiKey, opts...), nil
		}
		return NewOpenAIClient(apiKey, opts...), nil
	case ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai, anthropic or mock)", provider)
	}
}
