package domain

// Relationship classifies how close two belief statements are.
type Relationship string

const (
	RelationshipIdentical     Relationship = "identical"
	RelationshipNearIdentical Relationship = "near_identical"
	RelationshipOverlapping   Relationship = "overlapping"
	RelationshipRelated       Relationship = "related"
	RelationshipDistinct      Relationship = "distinct"
)

// Recommendation is what the caller should do with a pair of beliefs.
type Recommendation string

const (
	RecommendMerge    Recommendation = "merge"
	RecommendLink     Recommendation = "link"
	RecommendSpectrum Recommendation = "spectrum"
	RecommendRelate   Recommendation = "relate"
	RecommendNone     Recommendation = "none"
)

// Band lower bounds are inclusive.
const (
	IdenticalThreshold     = 0.90
	NearIdenticalThreshold = 0.70
	OverlappingThreshold   = 0.45
	RelatedThreshold       = 0.20
)

func ComputeRelationship(score float64) Relationship {
	switch {
	case score >= IdenticalThreshold:
		return RelationshipIdentical
	case score >= NearIdenticalThreshold:
		return RelationshipNearIdentical
	case score >= OverlappingThreshold:
		return RelationshipOverlapping
	case score >= RelatedThreshold:
		return RelationshipRelated
	default:
		return RelationshipDistinct
	}
}

func (r Relationship) Recommendation() Recommendation {
	switch r {
	case RelationshipIdentical:
		return RecommendMerge
	case RelationshipNearIdentical:
		return RecommendLink
	case RelationshipOverlapping:
		return RecommendSpectrum
	case RelationshipRelated:
		return RecommendRelate
	default:
		return RecommendNone
	}
}

func RelationshipReason(score float64) string {
	switch ComputeRelationship(score) {
	case RelationshipIdentical:
		return "score >= 0.90"
	case RelationshipNearIdentical:
		return "0.70 <= score < 0.90"
	case RelationshipOverlapping:
		return "0.45 <= score < 0.70"
	case RelationshipRelated:
		return "0.20 <= score < 0.45"
	default:
		return "score < 0.20"
	}
}

func AllRelationships() []Relationship {
	return []Relationship{
		RelationshipIdentical, RelationshipNearIdentical, RelationshipOverlapping,
		RelationshipRelated, RelationshipDistinct,
	}
}
