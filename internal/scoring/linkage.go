package scoring

import (
	"math"

	"github.com/Harshitk-cp/ise/internal/domain"
)

type LinkageResult struct {
	LinkageScore    float64 `json:"linkage_score"`
	AttenuatedScore float64 `json:"attenuated_score"`
	Agree           float64 `json:"agree"`
	Disagree        float64 `json:"disagree"`
}

// ResolveLinkage scores the agree/disagree sub-debate of one argument as
// (A-D)/(A+D), or 0 when nobody has weighed in. The attenuated score halves
// with every level of depth.
func ResolveLinkage(links []domain.LinkageArgument, depth int) LinkageResult {
	var agree, disagree float64
	for _, l := range links {
		s := clamp01(l.Strength)
		switch l.Side {
		case domain.LinkageAgree:
			agree += s
		case domain.LinkageDisagree:
			disagree += s
		}
	}

	res := LinkageResult{Agree: agree, Disagree: disagree}
	if agree+disagree == 0 {
		return res
	}
	res.LinkageScore = (agree - disagree) / (agree + disagree)
	res.AttenuatedScore = res.LinkageScore * DepthAttenuation(depth)
	return res
}

// DepthAttenuation is 0.5^depth.
func DepthAttenuation(depth int) float64 {
	if depth <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(depth))
}

// linkageFactor scales an argument's rank by how well it connects to its
// parent. Agreement leaves the rank intact; net disagreement scales it down
// to zero at unanimous rejection.
func linkageFactor(score float64) float64 {
	if score >= 0 {
		return 1
	}
	if score < -1 {
		score = -1
	}
	return 1 + score
}
