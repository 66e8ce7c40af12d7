package llm

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
)

// MockClient is a configurable fallacy detector for testing.
// With no response set it falls back to keyword heuristics, so the mock
// provider still produces stable, plausible penalties.
type MockClient struct {
	DetectFallaciesResponse []domain.FallacyType
	DetectFallaciesError    error

	// Call tracking for assertions
	DetectFallaciesCalls []struct{ Statement, Parent string }
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) DetectFallacies(_ context.Context, statement, parentStatement string) ([]domain.FallacyType, error) {
	m.DetectFallaciesCalls = append(m.DetectFallaciesCalls, struct{ Statement, Parent string }{statement, parentStatement})
	if m.DetectFallaciesError != nil {
		return nil, m.DetectFallaciesError
	}
	if m.DetectFallaciesResponse != nil {
		return m.DetectFallaciesResponse, nil
	}
	return heuristicFallacies(statement, parentStatement), nil
}

var fallacyCues = []struct {
	fallacy domain.FallacyType
	cues    []string
}{
	{domain.FallacyAdHominem, []string{"idiot", "stupid", "liar", "you people"}},
	{domain.FallacyFalseDilemma, []string{"either we", "only two options", "or else"}},
	{domain.FallacySlipperySlope, []string{"next thing", "inevitably lead", "will lead to"}},
	{domain.FallacyAppealToAuthority, []string{"experts say", "experts agree", "scientists say"}},
	{domain.FallacyHastyGeneralization, []string{"everyone knows", "always", "never"}},
}

func heuristicFallacies(statement, parentStatement string) []domain.FallacyType {
	s := strings.ToLower(strings.TrimSpace(statement))
	out := []domain.FallacyType{}
	if s != "" && s == strings.ToLower(strings.TrimSpace(parentStatement)) {
		out = append(out, domain.FallacyCircularReasoning)
	}
	for _, fc := range fallacyCues {
		for _, cue := range fc.cues {
			if strings.Contains(s, cue) {
				out = append(out, fc.fallacy)
				break
			}
		}
	}
	return out
}
