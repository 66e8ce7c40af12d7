package domain

import "time"

// BeliefStatus is the lifecycle state of a claim in the debate.
type BeliefStatus string

const (
	BeliefActive    BeliefStatus = "active"
	BeliefContested BeliefStatus = "contested"
	BeliefEmerging  BeliefStatus = "emerging"
	BeliefArchived  BeliefStatus = "archived"
)

func ValidBeliefStatus(s string) bool {
	switch BeliefStatus(s) {
	case BeliefActive, BeliefContested, BeliefEmerging, BeliefArchived:
		return true
	}
	return false
}

// Volatility tiers how unstable a belief's score has been recently.
type Volatility string

const (
	VolatilityLow    Volatility = "low"
	VolatilityMedium Volatility = "medium"
	VolatilityHigh   Volatility = "high"
)

// Belief is a claim whose truth score is derived from its argument tree.
type Belief struct {
	ID                 int64        `json:"id" yaml:"id" validate:"gt=0"`
	Statement          string       `json:"statement" yaml:"statement" validate:"required"`
	Status             BeliefStatus `json:"status" yaml:"status" validate:"oneof=active contested emerging archived"`
	TruthScore         float64      `json:"truth_score" yaml:"truth_score" validate:"min=0,max=1"`
	ConfidenceInterval float64      `json:"confidence_interval" yaml:"confidence_interval" validate:"min=0"`
	Volatility         Volatility   `json:"volatility" yaml:"volatility" validate:"omitempty,oneof=low medium high"`
	AdversarialCycles  int          `json:"adversarial_cycles" yaml:"adversarial_cycles" validate:"min=0"`
	Embedding          []float32    `json:"-" yaml:"-"`
	CreatedAt          time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" yaml:"updated_at"`
}

// ScorePoint is one recorded truth score for a belief.
type ScorePoint struct {
	BeliefID   int64     `json:"belief_id" yaml:"belief_id"`
	TruthScore float64   `json:"truth_score" yaml:"truth_score"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// BeliefScores is the derived state written back after a recompute.
type BeliefScores struct {
	TruthScore         float64    `json:"truth_score"`
	ConfidenceInterval float64    `json:"confidence_interval"`
	Volatility         Volatility `json:"volatility"`
}
