package domain

import "time"

// EvidenceSide is whether evidence strengthens or weakens the claim it is attached to.
type EvidenceSide string

const (
	EvidenceSupporting EvidenceSide = "supporting"
	EvidenceWeakening  EvidenceSide = "weakening"
)

func ValidEvidenceSide(s string) bool {
	switch EvidenceSide(s) {
	case EvidenceSupporting, EvidenceWeakening:
		return true
	}
	return false
}

// QualityTier grades a source from peer-reviewed (T1) down to anecdotal (T4).
type QualityTier string

const (
	TierT1 QualityTier = "T1"
	TierT2 QualityTier = "T2"
	TierT3 QualityTier = "T3"
	TierT4 QualityTier = "T4"
)

// Weight scales a source's EVS when evidence is aggregated.
func (t QualityTier) Weight() float64 {
	switch t {
	case TierT1:
		return 1.0
	case TierT2:
		return 0.75
	case TierT3:
		return 0.5
	case TierT4:
		return 0.25
	default:
		return 0.5
	}
}

func ValidQualityTier(s string) bool {
	switch QualityTier(s) {
	case TierT1, TierT2, TierT3, TierT4:
		return true
	}
	return false
}

// Evidence backs a belief, or one argument of it when ArgumentID is non-zero.
type Evidence struct {
	ID                       int64        `json:"id" yaml:"id"`
	BeliefID                 int64        `json:"belief_id" yaml:"belief_id" validate:"gt=0"`
	ArgumentID               int64        `json:"argument_id,omitempty" yaml:"argument_id,omitempty" validate:"min=0"`
	Title                    string       `json:"title,omitempty" yaml:"title,omitempty"`
	URL                      string       `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Side                     EvidenceSide `json:"side" yaml:"side" validate:"oneof=supporting weakening"`
	SourceIndependenceWeight float64      `json:"source_independence_weight" yaml:"source_independence_weight" validate:"min=0,max=1"`
	ReplicationQuantity      int          `json:"replication_quantity" yaml:"replication_quantity" validate:"min=0"`
	ConclusionRelevance      float64      `json:"conclusion_relevance" yaml:"conclusion_relevance" validate:"min=0,max=1"`
	ReplicationPercentage    float64      `json:"replication_percentage" yaml:"replication_percentage" validate:"min=0,max=1"`
	QualityTier              QualityTier  `json:"quality_tier" yaml:"quality_tier" validate:"oneof=T1 T2 T3 T4"`
	CreatedAt                time.Time    `json:"created_at" yaml:"created_at"`
}
