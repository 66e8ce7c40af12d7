package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	ConfidenceZ        = 1.96
	MaxConfidenceWidth = 0.5
	VolatilityWindow   = 24 * time.Hour
	CyclesPerReversal  = 4
	MediumVolatility   = 2.0
	HighVolatility     = 5.0
)

// ConfidenceInterval is the half-width of a normal-approximation interval
// around truth, narrowing as n independent arguments and evidence accumulate.
func ConfidenceInterval(truth float64, n int) float64 {
	if n < 0 {
		n = 0
	}
	t := clamp01(truth)
	ci := ConfidenceZ * math.Sqrt(t*(1-t)/float64(1+n))
	if ci > MaxConfidenceWidth {
		return MaxConfidenceWidth
	}
	return ci
}

// ComputeVolatility counts direction reversals among score points in the
// window ending at the latest point and adds a quarter point per adversarial
// revision cycle.
func ComputeVolatility(history []domain.ScorePoint, adversarialCycles int) domain.Volatility {
	v := float64(Reversals(history)) + float64(max(adversarialCycles, 0))/CyclesPerReversal
	switch {
	case v < MediumVolatility:
		return domain.VolatilityLow
	case v < HighVolatility:
		return domain.VolatilityMedium
	default:
		return domain.VolatilityHigh
	}
}

// Reversals is the number of times the score changed direction inside the window.
func Reversals(history []domain.ScorePoint) int {
	if len(history) < 3 {
		return 0
	}
	pts := make([]domain.ScorePoint, len(history))
	copy(pts, history)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].RecordedAt.Before(pts[j].RecordedAt) })

	since := pts[len(pts)-1].RecordedAt.Add(-VolatilityWindow)
	start := sort.Search(len(pts), func(i int) bool { return !pts[i].RecordedAt.Before(since) })
	pts = pts[start:]

	var reversals, lastSign int
	for i := 1; i < len(pts); i++ {
		delta := pts[i].TruthScore - pts[i-1].TruthScore
		sign := 0
		switch {
		case delta > 0:
			sign = 1
		case delta < 0:
			sign = -1
		}
		if sign == 0 {
			continue
		}
		if lastSign != 0 && sign != lastSign {
			reversals++
		}
		lastSign = sign
	}
	return reversals
}
