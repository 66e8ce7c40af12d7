package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolStatus is the market lifecycle state of a belief.
type PoolStatus string

const (
	PoolActive      PoolStatus = "active"
	PoolResolvedYes PoolStatus = "resolved_yes"
	PoolResolvedNo  PoolStatus = "resolved_no"
	PoolExpired     PoolStatus = "expired"
)

func ValidPoolStatus(s string) bool {
	switch PoolStatus(s) {
	case PoolActive, PoolResolvedYes, PoolResolvedNo, PoolExpired:
		return true
	}
	return false
}

// Terminal reports whether the pool is frozen.
func (s PoolStatus) Terminal() bool {
	return s != PoolActive
}

type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

func ValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeYes, OutcomeNo:
		return true
	}
	return false
}

// Opposite returns the other outcome of the binary market.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// LiquidityPool holds the YES/NO reserves of a market-enabled belief.
// K is the reserve product at the last rebalancing and is informational.
type LiquidityPool struct {
	BeliefID    int64           `json:"belief_id" yaml:"belief_id" validate:"gt=0"`
	YesShares   decimal.Decimal `json:"yes_shares" yaml:"yes_shares" validate:"dpositive"`
	NoShares    decimal.Decimal `json:"no_shares" yaml:"no_shares" validate:"dpositive"`
	K           decimal.Decimal `json:"k" yaml:"k"`
	TotalVolume decimal.Decimal `json:"total_volume" yaml:"total_volume" validate:"dnonnegative"`
	Status      PoolStatus      `json:"status" yaml:"status" validate:"oneof=active resolved_yes resolved_no expired"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Reserve returns the pool's reserve of the given outcome.
func (p LiquidityPool) Reserve(o Outcome) decimal.Decimal {
	if o == OutcomeYes {
		return p.YesShares
	}
	return p.NoShares
}

// Share is a user's net position in one outcome of one belief.
type Share struct {
	UserID           int64           `json:"user_id" yaml:"user_id" validate:"gt=0"`
	BeliefID         int64           `json:"belief_id" yaml:"belief_id" validate:"gt=0"`
	Outcome          Outcome         `json:"outcome" yaml:"outcome" validate:"oneof=yes no"`
	Quantity         decimal.Decimal `json:"quantity" yaml:"quantity" validate:"dpositive"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price" yaml:"avg_purchase_price" validate:"dnonnegative"`
}

// Trade is an immutable execution record.
type Trade struct {
	ID            uuid.UUID       `json:"id" yaml:"id"`
	UserID        int64           `json:"user_id" yaml:"user_id"`
	BeliefID      int64           `json:"belief_id" yaml:"belief_id"`
	Outcome       Outcome         `json:"outcome" yaml:"outcome"`
	Side          TradeSide       `json:"side" yaml:"side"`
	Amount        decimal.Decimal `json:"amount" yaml:"amount"`
	Shares        decimal.Decimal `json:"shares" yaml:"shares"`
	Price         decimal.Decimal `json:"price" yaml:"price"`
	YesPriceAfter decimal.Decimal `json:"yes_price_after" yaml:"yes_price_after"`
	ExecutedAt    time.Time       `json:"executed_at" yaml:"executed_at"`
}

type UserBalance struct {
	UserID         int64           `json:"user_id" yaml:"user_id" validate:"gt=0"`
	CurrentBalance decimal.Decimal `json:"current_balance" yaml:"current_balance" validate:"dnonnegative"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl" yaml:"realized_pnl"`
}
