package scoring

import (
	"math"

	"github.com/Harshitk-cp/ise/internal/domain"
)

// ScoreEvidence returns the Evidence Validity Score
// independence * log2(replications+1) * relevance * replicationRate.
func ScoreEvidence(e domain.Evidence) float64 {
	if e.ReplicationQuantity <= 0 {
		return 0
	}
	evs := e.SourceIndependenceWeight *
		math.Log2(float64(e.ReplicationQuantity)+1) *
		e.ConclusionRelevance *
		e.ReplicationPercentage
	if evs < 0 {
		return 0
	}
	return evs
}

// NetEvidence is the tier-weighted supporting EVS minus the tier-weighted weakening EVS.
func NetEvidence(evidence []domain.Evidence) float64 {
	var net float64
	for _, e := range evidence {
		w := e.QualityTier.Weight() * ScoreEvidence(e)
		if e.Side == domain.EvidenceWeakening {
			net -= w
		} else {
			net += w
		}
	}
	return net
}

// EvidenceContribution maps a net EVS onto (-EvidenceWeight, EvidenceWeight).
func (c Config) EvidenceContribution(net float64) float64 {
	c = c.normalized()
	return c.EvidenceWeight * math.Tanh(net/c.EvidenceScale)
}
