package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LikelihoodEstimate is one competing probability claim for a likelihood
// belief. Its Arguments form a debate tree rooted at the estimate itself.
type LikelihoodEstimate struct {
	ID                 int64      `json:"id" yaml:"id" validate:"gt=0"`
	LikelihoodBeliefID int64      `json:"likelihood_belief_id" yaml:"likelihood_belief_id"`
	Probability        float64    `json:"probability" yaml:"probability" validate:"min=0,max=1"`
	IsActive           bool       `json:"is_active" yaml:"is_active"`
	Score              float64    `json:"score" yaml:"score"`
	Arguments          []Argument `json:"arguments,omitempty" yaml:"arguments,omitempty" validate:"dive"`
	Evidence           []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty" validate:"dive"`
	SubmittedAt        time.Time  `json:"submitted_at" yaml:"submitted_at"`
}

// LikelihoodBelief is the "what is the chance this happens" claim owned by a line item.
type LikelihoodBelief struct {
	ID               int64                `json:"id" yaml:"id"`
	Statement        string               `json:"statement" yaml:"statement"`
	ActiveEstimateID int64                `json:"active_estimate_id" yaml:"active_estimate_id"`
	ActiveLikelihood float64              `json:"active_likelihood" yaml:"active_likelihood" validate:"min=0,max=1"`
	Estimates        []LikelihoodEstimate `json:"estimates" yaml:"estimates" validate:"dive"`
}

// LineItemType separates benefits from costs in a cost-benefit analysis.
type LineItemType string

const (
	LineItemBenefit LineItemType = "benefit"
	LineItemCost    LineItemType = "cost"
)

func ValidLineItemType(s string) bool {
	switch LineItemType(s) {
	case LineItemBenefit, LineItemCost:
		return true
	}
	return false
}

// CBALineItem is one benefit or cost. PredictedImpact is negative for costs.
type CBALineItem struct {
	ID              int64            `json:"id" yaml:"id" validate:"gt=0"`
	CBAID           int64            `json:"cba_id" yaml:"cba_id"`
	Description     string           `json:"description" yaml:"description"`
	Type            LineItemType     `json:"type" yaml:"type" validate:"oneof=benefit cost"`
	PredictedImpact decimal.Decimal  `json:"predicted_impact" yaml:"predicted_impact" validate:"impactsign"`
	Likelihood      LikelihoodBelief `json:"likelihood" yaml:"likelihood"`
	ExpectedValue   decimal.Decimal  `json:"expected_value" yaml:"expected_value"`
	UpdatedAt       time.Time        `json:"updated_at" yaml:"updated_at"`
}

// CBA is a cost-benefit analysis with its derived aggregates.
type CBA struct {
	ID                    int64           `json:"id" yaml:"id"`
	Title                 string          `json:"title" yaml:"title"`
	Items                 []CBALineItem   `json:"items" yaml:"items" validate:"dive"`
	TotalExpectedBenefits decimal.Decimal `json:"total_expected_benefits" yaml:"total_expected_benefits"`
	TotalExpectedCosts    decimal.Decimal `json:"total_expected_costs" yaml:"total_expected_costs"`
	NetExpectedValue      decimal.Decimal `json:"net_expected_value" yaml:"net_expected_value"`
}
