package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/ise/internal/arbitrage"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
	"github.com/Harshitk-cp/ise/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrPoolNotFound    = errors.New("liquidity pool not found")
	ErrPoolExists      = errors.New("belief already has a liquidity pool")
	ErrBalanceNotFound = errors.New("user balance not found")
)

// Settlement summarizes the payouts made when a pool is frozen.
type Settlement struct {
	Pool      domain.LiquidityPool `json:"pool"`
	Holders   int                  `json:"holders"`
	TotalPaid decimal.Decimal      `json:"total_paid"`
}

// MarketService runs trades and lifecycle changes. Each one is a single
// store transaction holding row locks on the pool and the user's balance,
// so trades on one pool are serialized and either fully apply or not at all.
type MarketService struct {
	marketStore domain.MarketStore
	beliefStore domain.BeliefStore
	logger      *zap.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewMarketService(ms domain.MarketStore, bs domain.BeliefStore, logger *zap.Logger) *MarketService {
	return &MarketService{
		marketStore: ms,
		beliefStore: bs,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.New,
	}
}

// OpenPool enables trading on a belief with equal YES and NO reserves.
func (s *MarketService) OpenPool(ctx context.Context, beliefID int64, liquidity decimal.Decimal, expiresAt *time.Time) (*domain.LiquidityPool, error) {
	if _, err := s.beliefStore.GetByID(ctx, beliefID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	pool, err := market.NewPool(beliefID, liquidity, expiresAt, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.marketStore.CreatePool(ctx, &pool); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrPoolExists
		}
		return nil, fmt.Errorf("create pool: %w", err)
	}
	s.logger.Info("liquidity pool opened",
		zap.Int64("belief_id", beliefID),
		zap.String("liquidity", liquidity.String()))
	return &pool, nil
}

func (s *MarketService) GetPool(ctx context.Context, beliefID int64) (*domain.LiquidityPool, error) {
	p, err := s.marketStore.GetPool(ctx, beliefID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return p, nil
}

// Quote prices a trade against the pool's current reserves without locking.
// For a buy qty is the amount to spend; for a sell it is the share count.
func (s *MarketService) Quote(ctx context.Context, beliefID int64, outcome domain.Outcome, side domain.TradeSide, qty decimal.Decimal) (*market.Quote, error) {
	pool, err := s.GetPool(ctx, beliefID)
	if err != nil {
		return nil, err
	}
	return quoteFor(*pool, outcome, side, qty)
}

// Buy spends amount on outcome at the pool's current price.
func (s *MarketService) Buy(ctx context.Context, userID, beliefID int64, outcome domain.Outcome, amount decimal.Decimal) (*market.Execution, error) {
	return s.trade(ctx, userID, beliefID, func(pool domain.LiquidityPool) (*market.Quote, error) {
		return market.QuoteBuy(pool, outcome, amount)
	}, domain.TradeBuy)
}

// Sell returns quantity shares of outcome to the pool.
func (s *MarketService) Sell(ctx context.Context, userID, beliefID int64, outcome domain.Outcome, quantity decimal.Decimal) (*market.Execution, error) {
	return s.trade(ctx, userID, beliefID, func(pool domain.LiquidityPool) (*market.Quote, error) {
		return market.QuoteSell(pool, outcome, quantity)
	}, domain.TradeSell)
}

// ExecuteQuote applies a previously issued quote. If the pool moved since the
// quote was taken the trade is rejected with market.ErrStaleQuote.
func (s *MarketService) ExecuteQuote(ctx context.Context, userID int64, q *market.Quote) (*market.Execution, error) {
	if q == nil {
		return nil, domain.NewValidationError("quote", "is required")
	}
	return s.trade(ctx, userID, q.BeliefID, func(domain.LiquidityPool) (*market.Quote, error) {
		return q, nil
	}, q.Side)
}

func (s *MarketService) trade(ctx context.Context, userID, beliefID int64, quote func(domain.LiquidityPool) (*market.Quote, error), side domain.TradeSide) (*market.Execution, error) {
	var exec *market.Execution
	err := s.marketStore.WithTx(ctx, func(tx domain.MarketTx) error {
		pool, err := lockPool(ctx, tx, beliefID)
		if err != nil {
			return err
		}
		balance, err := tx.LockBalance(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrBalanceNotFound
			}
			return err
		}
		q, err := quote(*pool)
		if err != nil {
			return err
		}
		holding, err := tx.GetShare(ctx, userID, beliefID, q.Outcome)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		exec, err = market.ApplyTrade(*pool, *balance, holding, q, market.TradeMeta{ID: s.newID(), ExecutedAt: s.now()})
		if err != nil {
			return err
		}
		return persistExecution(ctx, tx, exec)
	})
	if err != nil {
		tradesTotal.WithLabelValues(string(side), rejectReason(err)).Inc()
		s.logger.Info("trade rejected",
			zap.Int64("user_id", userID),
			zap.Int64("belief_id", beliefID),
			zap.String("side", string(side)),
			zap.Error(err))
		return nil, err
	}

	tradesTotal.WithLabelValues(string(side), "ok").Inc()
	s.logger.Info("trade executed",
		zap.String("trade_id", exec.Trade.ID.String()),
		zap.Int64("user_id", userID),
		zap.Int64("belief_id", beliefID),
		zap.String("side", string(exec.Trade.Side)),
		zap.String("outcome", string(exec.Trade.Outcome)),
		zap.String("amount", exec.Trade.Amount.String()),
		zap.String("shares", exec.Trade.Shares.String()),
		zap.String("pool_yes", exec.Pool.YesShares.String()),
		zap.String("pool_no", exec.Pool.NoShares.String()))
	return exec, nil
}

// Resolve settles a pool on the winning outcome and pays every holder.
func (s *MarketService) Resolve(ctx context.Context, beliefID int64, winner domain.Outcome) (*Settlement, error) {
	return s.settle(ctx, beliefID, func(pool domain.LiquidityPool) (domain.LiquidityPool, error) {
		return market.Resolve(pool, winner, s.now())
	})
}

// Expire freezes a pool past its expiry and refunds every holder's cost basis.
func (s *MarketService) Expire(ctx context.Context, beliefID int64) (*Settlement, error) {
	return s.settle(ctx, beliefID, func(pool domain.LiquidityPool) (domain.LiquidityPool, error) {
		return market.Expire(pool, s.now())
	})
}

// ExpireDue expires every active pool whose expiry has passed. Failures
// on one pool are logged and do not stop the others.
func (s *MarketService) ExpireDue(ctx context.Context) (int, error) {
	pools, err := s.marketStore.ListExpirable(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expirable pools: %w", err)
	}
	expired := 0
	for _, p := range pools {
		if _, err := s.Expire(ctx, p.BeliefID); err != nil {
			s.logger.Warn("failed to expire pool",
				zap.Int64("belief_id", p.BeliefID),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *MarketService) settle(ctx context.Context, beliefID int64, transition func(domain.LiquidityPool) (domain.LiquidityPool, error)) (*Settlement, error) {
	var out *Settlement
	err := s.marketStore.WithTx(ctx, func(tx domain.MarketTx) error {
		pool, err := lockPool(ctx, tx, beliefID)
		if err != nil {
			return err
		}
		next, err := transition(*pool)
		if err != nil {
			return err
		}
		if err := tx.SavePool(ctx, next); err != nil {
			return fmt.Errorf("save pool: %w", err)
		}

		shares, err := tx.ListSharesByBelief(ctx, beliefID)
		if err != nil {
			return fmt.Errorf("list holders: %w", err)
		}
		out = &Settlement{Pool: next, TotalPaid: decimal.Zero}
		for _, sh := range shares {
			paid, err := payHolder(ctx, tx, sh, next.Status)
			if err != nil {
				return err
			}
			out.Holders++
			out.TotalPaid = out.TotalPaid.Add(paid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	poolsSettled.WithLabelValues(string(out.Pool.Status)).Inc()
	s.logger.Info("pool settled",
		zap.Int64("belief_id", beliefID),
		zap.String("status", string(out.Pool.Status)),
		zap.Int("holders", out.Holders),
		zap.String("total_paid", out.TotalPaid.String()))
	return out, nil
}

// Portfolio values a user's holdings at current pool prices.
func (s *MarketService) Portfolio(ctx context.Context, userID int64) (*arbitrage.Portfolio, error) {
	balance, err := s.marketStore.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	holdings, err := s.marketStore.ListShares(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}

	prices := make(map[int64]market.Prices, len(holdings))
	for _, h := range holdings {
		if _, ok := prices[h.BeliefID]; ok {
			continue
		}
		pool, err := s.GetPool(ctx, h.BeliefID)
		if err != nil {
			return nil, fmt.Errorf("price belief %d: %w", h.BeliefID, err)
		}
		prices[h.BeliefID] = market.PriceOf(*pool)
	}
	return arbitrage.ValuePortfolio(holdings, prices, *balance)
}

func quoteFor(pool domain.LiquidityPool, outcome domain.Outcome, side domain.TradeSide, qty decimal.Decimal) (*market.Quote, error) {
	switch side {
	case domain.TradeBuy:
		return market.QuoteBuy(pool, outcome, qty)
	case domain.TradeSell:
		return market.QuoteSell(pool, outcome, qty)
	default:
		return nil, domain.NewValidationError("side", "must be buy or sell")
	}
}

func lockPool(ctx context.Context, tx domain.MarketTx, beliefID int64) (*domain.LiquidityPool, error) {
	pool, err := tx.LockPool(ctx, beliefID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return pool, nil
}

func persistExecution(ctx context.Context, tx domain.MarketTx, exec *market.Execution) error {
	if err := tx.SavePool(ctx, exec.Pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	if err := tx.SaveBalance(ctx, exec.Balance); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	switch {
	case exec.HoldingDeleted:
		if err := tx.DeleteShare(ctx, exec.Trade.UserID, exec.Trade.BeliefID, exec.Trade.Outcome); err != nil {
			return fmt.Errorf("delete share: %w", err)
		}
	case exec.Holding != nil:
		if err := tx.SaveShare(ctx, *exec.Holding); err != nil {
			return fmt.Errorf("save share: %w", err)
		}
	}
	if err := tx.InsertTrade(ctx, exec.Trade); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// payHolder credits one holding's payout, books the gain against its cost
// basis and closes the position.
func payHolder(ctx context.Context, tx domain.MarketTx, sh domain.Share, status domain.PoolStatus) (decimal.Decimal, error) {
	paid := market.Payout(sh, status)
	balance, err := tx.LockBalance(ctx, sh.UserID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock balance of user %d: %w", sh.UserID, err)
	}
	cost := sh.Quantity.Mul(sh.AvgPurchasePrice)
	balance.CurrentBalance = balance.CurrentBalance.Add(paid)
	balance.RealizedPnL = balance.RealizedPnL.Add(paid.Sub(cost)).Round(market.AmountPlaces)
	if err := tx.SaveBalance(ctx, *balance); err != nil {
		return decimal.Zero, fmt.Errorf("save balance of user %d: %w", sh.UserID, err)
	}
	if err := tx.DeleteShare(ctx, sh.UserID, sh.BeliefID, sh.Outcome); err != nil {
		return decimal.Zero, fmt.Errorf("close share of user %d: %w", sh.UserID, err)
	}
	return paid, nil
}

func rejectReason(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, market.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, market.ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, market.ErrPoolNotActive):
		return "pool_not_active"
	case errors.Is(err, market.ErrStaleQuote):
		return "stale_quote"
	case errors.Is(err, market.ErrQuoteMismatch):
		return "quote_mismatch"
	case errors.Is(err, ErrPoolNotFound), errors.Is(err, ErrBalanceNotFound):
		return "not_found"
	default:
		return "error"
	}
}
