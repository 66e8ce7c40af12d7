// Package arbitrage compares resolver truth scores against live market prices
// and values user holdings.
package arbitrage

import (
	"math"
	"sort"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
)

type Direction string

const (
	DirectionUndervalued Direction = "UNDERVALUED"
	DirectionOvervalued  Direction = "OVERVALUED"
	DirectionNone        Direction = "none"
)

// Candidate is a market-enabled belief with its current truth score.
type Candidate struct {
	BeliefID   int64                `json:"belief_id" yaml:"belief_id"`
	Statement  string               `json:"statement" yaml:"statement"`
	TruthScore float64              `json:"truth_score" yaml:"truth_score"`
	Pool       domain.LiquidityPool `json:"pool" yaml:"pool"`
}

type Opportunity struct {
	BeliefID        int64     `json:"belief_id"`
	Statement       string    `json:"statement"`
	TruthScore      float64   `json:"truth_score"`
	YesPrice        float64   `json:"yes_price"`
	Divergence      float64   `json:"divergence"`
	Magnitude       float64   `json:"magnitude"`
	Direction       Direction `json:"direction"`
	PotentialReturn float64   `json:"potential_return"`
}

// Diverge measures how far the market's YES price sits from the truth score.
func Diverge(truth, yesPrice float64) (divergence float64, dir Direction) {
	divergence = truth - yesPrice
	switch {
	case divergence > 0:
		return divergence, DirectionUndervalued
	case divergence < 0:
		return divergence, DirectionOvervalued
	default:
		return 0, DirectionNone
	}
}

// FindArbitrage ranks active markets whose divergence magnitude is at least
// minDivergence, largest first. Markets priced at zero are skipped because the
// potential return is undefined. limit <= 0 returns every match.
func FindArbitrage(candidates []Candidate, minDivergence float64, limit int) []Opportunity {
	var out []Opportunity
	for _, c := range candidates {
		if c.Pool.Status != domain.PoolActive {
			continue
		}
		yes := market.PriceOf(c.Pool).Yes.InexactFloat64()
		if yes <= 0 {
			continue
		}
		truth := clamp01(c.TruthScore)
		div, dir := Diverge(truth, yes)
		mag := math.Abs(div)
		if dir == DirectionNone || mag < minDivergence {
			continue
		}
		out = append(out, Opportunity{
			BeliefID:        c.BeliefID,
			Statement:       c.Statement,
			TruthScore:      truth,
			YesPrice:        yes,
			Divergence:      div,
			Magnitude:       mag,
			Direction:       dir,
			PotentialReturn: mag / yes,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Magnitude != out[j].Magnitude {
			return out[i].Magnitude > out[j].Magnitude
		}
		return out[i].BeliefID < out[j].BeliefID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
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
