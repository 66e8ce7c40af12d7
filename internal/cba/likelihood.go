// Package cba resolves competing likelihood estimates and rolls line-item
// expected values up into cost-benefit totals.
package cba

import (
	"fmt"
	"sort"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the minimum currency denomination.
const CurrencyPlaces = 2

type Resolution struct {
	Found            bool                        `json:"found"`
	ActiveEstimateID int64                       `json:"active_estimate_id"`
	ActiveLikelihood float64                     `json:"active_likelihood"`
	Estimates        []domain.LikelihoodEstimate `json:"estimates"`
}

// ResolveLikelihood scores every estimate as its own argument tree and marks
// the strongest one active. Ties go to the latest submission, then the higher id.
// The input slice is not modified.
func ResolveLikelihood(r *scoring.Resolver, estimates []domain.LikelihoodEstimate) (*Resolution, error) {
	out := make([]domain.LikelihoodEstimate, len(estimates))
	copy(out, estimates)

	for i := range out {
		e := &out[i]
		res, err := r.ResolveArgumentTree(domain.Belief{ID: e.ID}, e.Arguments, e.Evidence, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve estimate %d: %w", e.ID, err)
		}
		e.Score = res.TruthScore
		e.IsActive = false
	}

	res := &Resolution{Estimates: out}
	if len(out) == 0 {
		return res, nil
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return beats(out[order[i]], out[order[j]])
	})

	win := &out[order[0]]
	win.IsActive = true
	res.Found = true
	res.ActiveEstimateID = win.ID
	res.ActiveLikelihood = clamp01(win.Probability)
	return res, nil
}

func beats(a, b domain.LikelihoodEstimate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.ID > b.ID
}

// ComputeExpectedValue is impact × likelihood rounded to the minimum denomination.
func ComputeExpectedValue(impact decimal.Decimal, likelihood float64) decimal.Decimal {
	return impact.Mul(decimal.NewFromFloat(clamp01(likelihood))).Round(CurrencyPlaces)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
