package arbitrage

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
	"github.com/shopspring/decimal"
)

type Position struct {
	BeliefID         int64           `json:"belief_id" yaml:"belief_id"`
	Outcome          domain.Outcome  `json:"outcome" yaml:"outcome"`
	Quantity         decimal.Decimal `json:"quantity" yaml:"quantity"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price" yaml:"avg_purchase_price"`
	CurrentPrice     decimal.Decimal `json:"current_price" yaml:"current_price"`
	Invested         decimal.Decimal `json:"invested" yaml:"invested"`
	CurrentValue     decimal.Decimal `json:"current_value" yaml:"current_value"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl" yaml:"unrealized_pnl"`
}

type Portfolio struct {
	UserID          int64           `json:"user_id" yaml:"user_id"`
	Positions       []Position      `json:"positions" yaml:"positions"`
	Invested        decimal.Decimal `json:"invested" yaml:"invested"`
	UnrealizedValue decimal.Decimal `json:"unrealized_value" yaml:"unrealized_value"`
	RealizedPnL     decimal.Decimal `json:"realized_pnl" yaml:"realized_pnl"`
	CashBalance     decimal.Decimal `json:"cash_balance" yaml:"cash_balance"`
	TotalValue      decimal.Decimal `json:"total_value" yaml:"total_value"`
	ROI             float64         `json:"roi" yaml:"roi"`
}

// ValuePortfolio marks every holding to the current price of its belief's
// market. A holding whose belief has no price is a lookup failure.
// ROI is (realized + unrealized - invested) / invested, 0 with nothing invested.
func ValuePortfolio(holdings []domain.Share, prices map[int64]market.Prices, balance domain.UserBalance) (*Portfolio, error) {
	p := &Portfolio{
		UserID:          balance.UserID,
		Positions:       make([]Position, 0, len(holdings)),
		Invested:        decimal.Zero,
		UnrealizedValue: decimal.Zero,
		RealizedPnL:     balance.RealizedPnL,
		CashBalance:     balance.CurrentBalance,
	}

	for _, h := range holdings {
		pr, ok := prices[h.BeliefID]
		if !ok {
			return nil, fmt.Errorf("price for belief %d: %w", h.BeliefID, domain.ErrNotFound)
		}
		price := pr.Of(h.Outcome)
		invested := h.Quantity.Mul(h.AvgPurchasePrice).Round(market.AmountPlaces)
		value := h.Quantity.Mul(price).Round(market.AmountPlaces)

		p.Positions = append(p.Positions, Position{
			BeliefID:         h.BeliefID,
			Outcome:          h.Outcome,
			Quantity:         h.Quantity,
			AvgPurchasePrice: h.AvgPurchasePrice,
			CurrentPrice:     price,
			Invested:         invested,
			CurrentValue:     value,
			UnrealizedPnL:    value.Sub(invested),
		})
		p.Invested = p.Invested.Add(invested)
		p.UnrealizedValue = p.UnrealizedValue.Add(value)
	}

	p.TotalValue = p.CashBalance.Add(p.UnrealizedValue)
	if p.Invested.IsPositive() {
		gain := p.RealizedPnL.Add(p.UnrealizedValue).Sub(p.Invested)
		p.ROI = gain.Div(p.Invested).InexactFloat64()
	}
	return p, nil
}
