package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
)

// parseFallacies decodes a model's JSON array reply. Types outside the
// catalogue are kept as FallacyUnknown so each instance is still penalized.
func parseFallacies(result string) ([]domain.FallacyType, error) {
	// Strip markdown fences if present
	result = strings.TrimPrefix(result, "```json")
	result = strings.TrimPrefix(result, "```")
	result = strings.TrimSuffix(result, "```")
	result = strings.TrimSpace(result)

	var raw []string
	if err := json.Unmarshal([]byte(result), &raw); err != nil {
		return nil, fmt.Errorf("parse fallacy result: %w (raw: %s)", err, result)
	}

	out := make([]domain.FallacyType, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !domain.ValidFallacyType(s) {
			out = append(out, domain.FallacyUnknown)
			continue
		}
		out = append(out, domain.FallacyType(s))
	}
	return out, nil
}
