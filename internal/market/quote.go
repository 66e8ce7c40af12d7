package market

import (
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/shopspring/decimal"
)

// Quote is a priced trade against a specific reserve snapshot.
type Quote struct {
	BeliefID      int64            `json:"belief_id"`
	Outcome       domain.Outcome   `json:"outcome"`
	Side          domain.TradeSide `json:"side"`
	Amount        decimal.Decimal  `json:"amount"`
	Shares        decimal.Decimal  `json:"shares"`
	PricePerShare decimal.Decimal  `json:"price_per_share"`
	YesReserve    decimal.Decimal  `json:"yes_reserve"`
	NoReserve     decimal.Decimal  `json:"no_reserve"`
	YesAfter      decimal.Decimal  `json:"yes_after"`
	NoAfter       decimal.Decimal  `json:"no_after"`
	YesPriceAfter decimal.Decimal  `json:"yes_price_after"`
}

func checkQuotable(pool domain.LiquidityPool, outcome domain.Outcome) error {
	if !domain.ValidOutcome(string(outcome)) {
		return domain.NewValidationError("outcome", "must be yes or no")
	}
	if pool.Status != domain.PoolActive {
		return ErrPoolNotActive
	}
	if !pool.YesShares.IsPositive() || !pool.NoShares.IsPositive() {
		return domain.NewValidationError("pool", "reserves must be positive")
	}
	return nil
}

// QuoteBuy prices spending amount on outcome. Solving
// (S - shares) * (R + amount) = S * R gives shares = S*amount / (R+amount),
// where S is the bought outcome's reserve and R the other's.
func QuoteBuy(pool domain.LiquidityPool, outcome domain.Outcome, amount decimal.Decimal) (*Quote, error) {
	if err := checkQuotable(pool, outcome); err != nil {
		return nil, err
	}
	if amount.LessThan(MinAmount) {
		return nil, domain.NewValidationError("amount", "must be at least "+MinAmount.String())
	}
	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return nil, domain.NewValidationError("amount", "must not be finer than "+MinAmount.String())
	}

	s := pool.Reserve(outcome)
	r := pool.Reserve(outcome.Opposite())
	shares := s.Mul(amount).Div(r.Add(amount)).Truncate(SharePlaces)
	if !shares.IsPositive() {
		return nil, domain.NewValidationError("amount", "too small to receive any shares")
	}

	q := &Quote{
		BeliefID:      pool.BeliefID,
		Outcome:       outcome,
		Side:          domain.TradeBuy,
		Amount:        amount,
		Shares:        shares,
		PricePerShare: amount.Div(shares).Round(PricePlaces),
		YesReserve:    pool.YesShares,
		NoReserve:     pool.NoShares,
	}
	q.setAfter(outcome, s.Sub(shares), r.Add(amount))
	return q, nil
}

// QuoteSell prices returning quantity shares of outcome. The invariant run
// backward gives amount = R*quantity / (S+quantity), rounded down to the
// minimum denomination.
func QuoteSell(pool domain.LiquidityPool, outcome domain.Outcome, quantity decimal.Decimal) (*Quote, error) {
	if err := checkQuotable(pool, outcome); err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	if !quantity.Equal(quantity.Truncate(SharePlaces)) {
		return nil, domain.NewValidationError("quantity", "must not have more than 6 decimal places")
	}

	s := pool.Reserve(outcome)
	r := pool.Reserve(outcome.Opposite())
	amount := r.Mul(quantity).Div(s.Add(quantity)).Truncate(AmountPlaces)
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("quantity", "too small to return any collateral")
	}

	q := &Quote{
		BeliefID:      pool.BeliefID,
		Outcome:       outcome,
		Side:          domain.TradeSell,
		Amount:        amount,
		Shares:        quantity,
		PricePerShare: amount.Div(quantity).Round(PricePlaces),
		YesReserve:    pool.YesShares,
		NoReserve:     pool.NoShares,
	}
	q.setAfter(outcome, s.Add(quantity), r.Sub(amount))
	return q, nil
}

func (q *Quote) setAfter(outcome domain.Outcome, own, other decimal.Decimal) {
	if outcome == domain.OutcomeYes {
		q.YesAfter, q.NoAfter = own, other
	} else {
		q.YesAfter, q.NoAfter = other, own
	}
	q.YesPriceAfter = pricesFor(q.YesAfter, q.NoAfter).Yes
}
