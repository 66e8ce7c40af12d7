package embedding

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient returns the embedding client for provider.
func NewClient(provider, apiKey string, opts ...Option) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
		}
		return NewOpenAIClient(apiKey, opts...), nil
	case ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want openai or mock)", provider)
	}
}
