package domain

import "time"

// Side is the direction an argument pushes its parent claim.
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

func ValidSide(s string) bool {
	switch Side(s) {
	case SidePro, SideCon:
		return true
	}
	return false
}

// LinkageSide is a position in the "does this argument support its parent" sub-debate.
type LinkageSide string

const (
	LinkageAgree    LinkageSide = "agree"
	LinkageDisagree LinkageSide = "disagree"
)

func ValidLinkageSide(s string) bool {
	switch LinkageSide(s) {
	case LinkageAgree, LinkageDisagree:
		return true
	}
	return false
}

// FallacyType names a detected reasoning flaw. Each instance costs a fixed penalty.
type FallacyType string

const (
	FallacyAdHominem           FallacyType = "ad_hominem"
	FallacyStrawMan            FallacyType = "straw_man"
	FallacyFalseDilemma        FallacyType = "false_dilemma"
	FallacySlipperySlope       FallacyType = "slippery_slope"
	FallacyAppealToAuthority   FallacyType = "appeal_to_authority"
	FallacyCircularReasoning   FallacyType = "circular_reasoning"
	FallacyHastyGeneralization FallacyType = "hasty_generalization"
	FallacyRedHerring          FallacyType = "red_herring"
	FallacyUnknown             FallacyType = "unknown"
)

// Penalty is the amount subtracted from an argument's self truth per instance.
func (f FallacyType) Penalty() float64 {
	switch f {
	case FallacyCircularReasoning:
		return 0.20
	case FallacyAdHominem, FallacyStrawMan:
		return 0.15
	case FallacyFalseDilemma, FallacySlipperySlope, FallacyHastyGeneralization, FallacyRedHerring:
		return 0.10
	case FallacyAppealToAuthority:
		return 0.05
	default:
		return 0.05
	}
}

func ValidFallacyType(s string) bool {
	switch FallacyType(s) {
	case FallacyAdHominem, FallacyStrawMan, FallacyFalseDilemma, FallacySlipperySlope,
		FallacyAppealToAuthority, FallacyCircularReasoning, FallacyHastyGeneralization,
		FallacyRedHerring, FallacyUnknown:
		return true
	}
	return false
}

func AllFallacyTypes() []FallacyType {
	return []FallacyType{
		FallacyAdHominem, FallacyStrawMan, FallacyFalseDilemma, FallacySlipperySlope,
		FallacyAppealToAuthority, FallacyCircularReasoning, FallacyHastyGeneralization,
		FallacyRedHerring, FallacyUnknown,
	}
}

// Argument is a pro or con reason attached to a parent. ParentID is zero for
// arguments made directly on the belief, or the ID of the argument whose
// nested debate it belongs to.
type Argument struct {
	ID           int64             `json:"id" yaml:"id" validate:"gt=0"`
	BeliefID     int64             `json:"belief_id" yaml:"belief_id" validate:"gt=0"`
	ParentID     int64             `json:"parent_id" yaml:"parent_id" validate:"min=0"`
	Statement    string            `json:"statement" yaml:"statement"`
	Side         Side              `json:"side" yaml:"side" validate:"oneof=pro con"`
	Depth        int               `json:"depth" yaml:"depth" validate:"min=0"`
	TruthScore   float64           `json:"truth_score" yaml:"truth_score" validate:"min=0,max=1"`
	LinkageScore float64           `json:"linkage_score" yaml:"linkage_score" validate:"min=-1,max=1"`
	ImpactScore  float64           `json:"impact_score" yaml:"impact_score"`
	Fallacies    []FallacyType     `json:"fallacies,omitempty" yaml:"fallacies,omitempty" validate:"dive,fallacy"`
	Linkage      []LinkageArgument `json:"linkage,omitempty" yaml:"linkage,omitempty" validate:"dive"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
}

// LinkageArgument is one position in an argument's linkage sub-debate. It never nests.
type LinkageArgument struct {
	ID         int64       `json:"id" yaml:"id"`
	ArgumentID int64       `json:"argument_id" yaml:"argument_id"`
	Side       LinkageSide `json:"side" yaml:"side" validate:"oneof=agree disagree"`
	Strength   float64     `json:"strength" yaml:"strength" validate:"min=0,max=1"`
	Statement  string      `json:"statement,omitempty" yaml:"statement,omitempty"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
}
