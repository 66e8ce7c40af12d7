package scoring

import (
	"math"
	"time"
)

const (
	NoveltyPeak          = 1.25
	NoveltyFloor         = 1.0
	NoveltyHalflife      = 24 * time.Hour
	NoveltyMinUniqueness = 0.5
)

// Uniqueness of a statement against earlier ones is 1 minus its closest similarity.
func Uniqueness(similarities []float64) float64 {
	var best float64
	for _, s := range similarities {
		if s > best {
			best = s
		}
	}
	return clamp01(1 - best)
}

// StatementUniqueness compares a statement lexically against prior statements.
func StatementUniqueness(statement string, prior []string) float64 {
	tokens := Tokens(statement)
	sims := make([]float64, 0, len(prior))
	for _, p := range prior {
		sims = append(sims, Jaccard(tokens, Tokens(p)))
	}
	return Uniqueness(sims)
}

// NoveltyMultiplier rewards unique contributions with a premium that decays
// from NoveltyPeak toward NoveltyFloor with a NoveltyHalflife. It is for
// display and does not feed ReasonRank.
func NoveltyMultiplier(uniqueness float64, age time.Duration) float64 {
	if uniqueness < NoveltyMinUniqueness {
		return NoveltyFloor
	}
	if age < 0 {
		age = 0
	}
	decay := math.Pow(0.5, age.Hours()/NoveltyHalflife.Hours())
	return NoveltyFloor + (NoveltyPeak-NoveltyFloor)*decay
}
