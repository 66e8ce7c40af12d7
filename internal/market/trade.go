package market

import (
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/google/uuid"
)

// TradeMeta is the identity the caller assigns to an execution.
type TradeMeta struct {
	ID         uuid.UUID
	ExecutedAt time.Time
}

// Execution is the complete post-trade state. Holding is nil when the
// position was closed.
type Execution struct {
	Pool           domain.LiquidityPool `json:"pool"`
	Balance        domain.UserBalance   `json:"balance"`
	Holding        *domain.Share        `json:"holding,omitempty"`
	HoldingDeleted bool                 `json:"holding_deleted"`
	Trade          domain.Trade         `json:"trade"`
}

// ApplyTrade executes quote against the given snapshots. The quote is
// re-derived from pool and only the re-derived values are applied, so a
// quote whose figures differ from the pool's own is ErrQuoteMismatch.
// Every check runs before anything is computed, so a rejected trade has no
// effect. holding is the user's existing position in the quoted outcome, or nil.
func ApplyTrade(pool domain.LiquidityPool, balance domain.UserBalance, holding *domain.Share, submitted *Quote, meta TradeMeta) (*Execution, error) {
	quote, err := checkTrade(pool, balance, holding, submitted)
	if err != nil {
		return nil, err
	}

	next := pool
	next.TotalVolume = pool.TotalVolume.Add(quote.Amount)
	next.YesShares = quote.YesAfter
	next.NoShares = quote.NoAfter
	next.UpdatedAt = meta.ExecutedAt

	exec := &Execution{Pool: next, Balance: balance}

	switch quote.Side {
	case domain.TradeBuy:
		exec.Balance.CurrentBalance = balance.CurrentBalance.Sub(quote.Amount)
		exec.Holding = mergeBuy(balance.UserID, quote, holding)
	case domain.TradeSell:
		exec.Balance.CurrentBalance = balance.CurrentBalance.Add(quote.Amount)
		cost := holding.AvgPurchasePrice.Mul(quote.Shares)
		exec.Balance.RealizedPnL = balance.RealizedPnL.Add(quote.Amount.Sub(cost)).Round(AmountPlaces)

		remaining := holding.Quantity.Sub(quote.Shares)
		if remaining.IsZero() {
			exec.HoldingDeleted = true
		} else {
			h := *holding
			h.Quantity = remaining
			exec.Holding = &h
		}
	}

	exec.Trade = domain.Trade{
		ID:            meta.ID,
		UserID:        balance.UserID,
		BeliefID:      pool.BeliefID,
		Outcome:       quote.Outcome,
		Side:          quote.Side,
		Amount:        quote.Amount,
		Shares:        quote.Shares,
		Price:         quote.PricePerShare,
		YesPriceAfter: PriceOf(next).Yes,
		ExecutedAt:    meta.ExecutedAt,
	}
	return exec, nil
}

func checkTrade(pool domain.LiquidityPool, balance domain.UserBalance, holding *domain.Share, quote *Quote) (*Quote, error) {
	if quote == nil {
		return nil, domain.NewValidationError("quote", "is required")
	}
	if quote.BeliefID != pool.BeliefID {
		return nil, domain.NewValidationError("quote", "belongs to a different pool")
	}
	if quote.Side != domain.TradeBuy && quote.Side != domain.TradeSell {
		return nil, domain.NewValidationError("side", "must be buy or sell")
	}
	if balance.UserID <= 0 {
		return nil, domain.NewValidationError("user_id", "must be positive")
	}
	if holding != nil && (holding.UserID != balance.UserID || holding.BeliefID != pool.BeliefID || holding.Outcome != quote.Outcome) {
		return nil, domain.NewValidationError("holding", "does not match the trade")
	}
	if pool.Status != domain.PoolActive {
		return nil, ErrPoolNotActive
	}

	switch quote.Side {
	case domain.TradeBuy:
		if balance.CurrentBalance.LessThan(quote.Amount) {
			return nil, ErrInsufficientBalance
		}
	case domain.TradeSell:
		if holding == nil || holding.Quantity.LessThan(quote.Shares) {
			return nil, ErrInsufficientShares
		}
	}

	if !pool.YesShares.Equal(quote.YesReserve) || !pool.NoShares.Equal(quote.NoReserve) {
		return nil, ErrStaleQuote
	}

	var canonical *Quote
	var err error
	if quote.Side == domain.TradeBuy {
		canonical, err = QuoteBuy(pool, quote.Outcome, quote.Amount)
	} else {
		canonical, err = QuoteSell(pool, quote.Outcome, quote.Shares)
	}
	if err != nil {
		return nil, err
	}
	if !canonical.sameTerms(quote) {
		return nil, ErrQuoteMismatch
	}
	return canonical, nil
}

func (q *Quote) sameTerms(o *Quote) bool {
	return q.Amount.Equal(o.Amount) &&
		q.Shares.Equal(o.Shares) &&
		q.PricePerShare.Equal(o.PricePerShare) &&
		q.YesAfter.Equal(o.YesAfter) &&
		q.NoAfter.Equal(o.NoAfter) &&
		q.YesPriceAfter.Equal(o.YesPriceAfter)
}

// mergeBuy folds a purchase into the existing position using a
// volume-weighted average price.
func mergeBuy(userID int64, quote *Quote, holding *domain.Share) *domain.Share {
	if holding == nil {
		return &domain.Share{
			UserID:           userID,
			BeliefID:         quote.BeliefID,
			Outcome:          quote.Outcome,
			Quantity:         quote.Shares,
			AvgPurchasePrice: quote.PricePerShare,
		}
	}
	h := *holding
	qty := holding.Quantity.Add(quote.Shares)
	spent := holding.Quantity.Mul(holding.AvgPurchasePrice).Add(quote.Amount)
	h.AvgPurchasePrice = spent.Div(qty).Round(PricePlaces)
	h.Quantity = qty
	return &h
}
