// Package market implements a two-outcome constant-product market maker.
// Currency amounts carry two decimal places and share quantities six; every
// rounding step favours the pool so reserves never drift below the invariant.
package market

import (
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	AmountPlaces = 2
	SharePlaces  = 6
	PricePlaces  = 6
)

var (
	MinAmount = decimal.New(1, -AmountPlaces)
	one       = decimal.NewFromInt(1)
	half      = decimal.NewFromFloat(0.5)
)

type Prices struct {
	Yes decimal.Decimal `json:"yes_price"`
	No  decimal.Decimal `json:"no_price"`
}

// Of returns the price of one outcome.
func (p Prices) Of(o domain.Outcome) decimal.Decimal {
	if o == domain.OutcomeYes {
		return p.Yes
	}
	return p.No
}

// PriceOf derives outcome prices from reserves. YES is priced by the NO
// reserve's share of the pool; the two prices always sum to exactly 1.
func PriceOf(pool domain.LiquidityPool) Prices {
	return pricesFor(pool.YesShares, pool.NoShares)
}

func pricesFor(yes, no decimal.Decimal) Prices {
	total := yes.Add(no)
	if !total.IsPositive() {
		return Prices{Yes: half, No: half}
	}
	y := no.Div(total).Round(PricePlaces)
	return Prices{Yes: y, No: one.Sub(y)}
}

// NewPool seeds a market with equal reserves, so both outcomes start at 0.5.
func NewPool(beliefID int64, liquidity decimal.Decimal, expiresAt *time.Time, now time.Time) (domain.LiquidityPool, error) {
	if beliefID <= 0 {
		return domain.LiquidityPool{}, domain.NewValidationError("belief_id", "must be positive")
	}
	if !liquidity.IsPositive() {
		return domain.LiquidityPool{}, domain.NewValidationError("liquidity", "must be positive")
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return domain.LiquidityPool{}, domain.NewValidationError("expires_at", "must be in the future")
	}
	liquidity = liquidity.Truncate(SharePlaces)
	return domain.LiquidityPool{
		BeliefID:    beliefID,
		YesShares:   liquidity,
		NoShares:    liquidity,
		K:           liquidity.Mul(liquidity),
		TotalVolume: decimal.Zero,
		Status:      domain.PoolActive,
		ExpiresAt:   expiresAt,
		UpdatedAt:   now,
	}, nil
}

// Resolve settles an active pool on the winning outcome.
func Resolve(pool domain.LiquidityPool, winner domain.Outcome, now time.Time) (domain.LiquidityPool, error) {
	if pool.Status != domain.PoolActive {
		return pool, ErrInvalidTransition
	}
	switch winner {
	case domain.OutcomeYes:
		pool.Status = domain.PoolResolvedYes
	case domain.OutcomeNo:
		pool.Status = domain.PoolResolvedNo
	default:
		return pool, domain.NewValidationError("outcome", "must be yes or no")
	}
	pool.UpdatedAt = now
	return pool, nil
}

// Expire freezes an active pool whose expiry has passed.
func Expire(pool domain.LiquidityPool, now time.Time) (domain.LiquidityPool, error) {
	if pool.Status != domain.PoolActive || pool.ExpiresAt == nil || now.Before(*pool.ExpiresAt) {
		return pool, ErrInvalidTransition
	}
	pool.Status = domain.PoolExpired
	pool.UpdatedAt = now
	return pool, nil
}

// Payout is what a holding is worth once its pool is frozen: one unit per
// winning share, nothing for losing shares, and the cost basis back on expiry.
func Payout(share domain.Share, status domain.PoolStatus) decimal.Decimal {
	switch status {
	case domain.PoolResolvedYes:
		if share.Outcome == domain.OutcomeYes {
			return share.Quantity.Truncate(AmountPlaces)
		}
	case domain.PoolResolvedNo:
		if share.Outcome == domain.OutcomeNo {
			return share.Quantity.Truncate(AmountPlaces)
		}
	case domain.PoolExpired:
		return share.Quantity.Mul(share.AvgPurchasePrice).Truncate(AmountPlaces)
	}
	return decimal.Zero
}
