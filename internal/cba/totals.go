package cba

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/shopspring/decimal"
)

// Totals are the CBA aggregates. Costs is a positive magnitude, so
// Net = Benefits - Costs.
type Totals struct {
	Benefits decimal.Decimal `json:"total_expected_benefits"`
	Costs    decimal.Decimal `json:"total_expected_costs"`
	Net      decimal.Decimal `json:"net_expected_value"`
}

func ComputeTotals(items []domain.CBALineItem) Totals {
	t := Totals{Benefits: decimal.Zero, Costs: decimal.Zero}
	for _, it := range items {
		switch it.Type {
		case domain.LineItemBenefit:
			t.Benefits = t.Benefits.Add(it.ExpectedValue)
		case domain.LineItemCost:
			t.Costs = t.Costs.Add(it.ExpectedValue.Abs())
		}
	}
	t.Net = t.Benefits.Sub(t.Costs)
	return t
}

// RecomputeItem re-resolves the item's likelihood when it has estimates and
// recomputes its expected value.
func RecomputeItem(r *scoring.Resolver, item domain.CBALineItem) (domain.CBALineItem, error) {
	if len(item.Likelihood.Estimates) > 0 {
		res, err := ResolveLikelihood(r, item.Likelihood.Estimates)
		if err != nil {
			return item, fmt.Errorf("line item %d: %w", item.ID, err)
		}
		item.Likelihood.Estimates = res.Estimates
		item.Likelihood.ActiveEstimateID = res.ActiveEstimateID
		item.Likelihood.ActiveLikelihood = res.ActiveLikelihood
	}
	item.ExpectedValue = ComputeExpectedValue(item.PredictedImpact, item.Likelihood.ActiveLikelihood)
	return item, nil
}

// Recompute refreshes every line item and the CBA aggregates.
// The input is not modified.
func Recompute(r *scoring.Resolver, c domain.CBA) (domain.CBA, error) {
	items := make([]domain.CBALineItem, len(c.Items))
	for i, it := range c.Items {
		updated, err := RecomputeItem(r, it)
		if err != nil {
			return c, err
		}
		items[i] = updated
	}
	c.Items = items

	t := ComputeTotals(items)
	c.TotalExpectedBenefits = t.Benefits
	c.TotalExpectedCosts = t.Costs
	c.NetExpectedValue = t.Net
	return c, nil
}
