package store

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MarketStore struct {
	db *pgxpool.Pool
}

func NewMarketStore(db *pgxpool.Pool) *MarketStore {
	return &MarketStore{db: db}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const poolColumns = `belief_id, yes_shares, no_shares, k, total_volume, status, expires_at, updated_at`

func scanPool(row pgx.Row) (*domain.LiquidityPool, error) {
	p := &domain.LiquidityPool{}
	err := row.Scan(&p.BeliefID, &p.YesShares, &p.NoShares, &p.K, &p.TotalVolume, &p.Status, &p.ExpiresAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func listPools(ctx context.Context, q querier, sql string, args ...any) ([]domain.LiquidityPool, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LiquidityPool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanBalance(row pgx.Row) (*domain.UserBalance, error) {
	b := &domain.UserBalance{}
	if err := row.Scan(&b.UserID, &b.CurrentBalance, &b.RealizedPnL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func listShares(ctx context.Context, q querier, sql string, args ...any) ([]domain.Share, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Share
	for rows.Next() {
		var sh domain.Share
		if err := rows.Scan(&sh.UserID, &sh.BeliefID, &sh.Outcome, &sh.Quantity, &sh.AvgPurchasePrice); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *MarketStore) CreatePool(ctx context.Context, p *domain.LiquidityPool) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO liquidity_pools (belief_id, yes_shares, no_shares, k, total_volume, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (belief_id) DO NOTHING
		 RETURNING updated_at`,
		p.BeliefID, p.YesShares, p.NoShares, p.K, p.TotalVolume, p.Status, p.ExpiresAt,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConflict
	}
	return err
}

func (s *MarketStore) GetPool(ctx context.Context, beliefID int64) (*domain.LiquidityPool, error) {
	return scanPool(s.db.QueryRow(ctx, `SELECT `+poolColumns+` FROM liquidity_pools WHERE belief_id = $1`, beliefID))
}

func (s *MarketStore) ListActivePools(ctx context.Context) ([]domain.LiquidityPool, error) {
	return listPools(ctx, s.db, `SELECT `+poolColumns+` FROM liquidity_pools WHERE status = 'active' ORDER BY belief_id`)
}

func (s *MarketStore) ListExpirable(ctx context.Context, now time.Time) ([]domain.LiquidityPool, error) {
	return listPools(ctx, s.db,
		`SELECT `+poolColumns+` FROM liquidity_pools
		 WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
		 ORDER BY belief_id`,
		now)
}

func (s *MarketStore) GetBalance(ctx context.Context, userID int64) (*domain.UserBalance, error) {
	return scanBalance(s.db.QueryRow(ctx,
		`SELECT user_id, current_balance, realized_pnl FROM user_balances WHERE user_id = $1`, userID))
}

func (s *MarketStore) ListShares(ctx context.Context, userID int64) ([]domain.Share, error) {
	return listShares(ctx, s.db,
		`SELECT user_id, belief_id, outcome, quantity, avg_purchase_price FROM shares
		 WHERE user_id = $1 ORDER BY belief_id, outcome`,
		userID)
}

// WithTx runs fn inside a transaction. Rows locked through the MarketTx stay
// locked until fn returns, which serializes trades on the same pool.
func (s *MarketStore) WithTx(ctx context.Context, fn func(tx domain.MarketTx) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&marketTx{tx: tx})
	})
}

type marketTx struct {
	tx pgx.Tx
}

func (t *marketTx) LockPool(ctx context.Context, beliefID int64) (*domain.LiquidityPool, error) {
	return scanPool(t.tx.QueryRow(ctx,
		`SELECT `+poolColumns+` FROM liquidity_pools WHERE belief_id = $1 FOR UPDATE`, beliefID))
}

func (t *marketTx) LockBalance(ctx context.Context, userID int64) (*domain.UserBalance, error) {
	return scanBalance(t.tx.QueryRow(ctx,
		`SELECT user_id, current_balance, realized_pnl FROM user_balances WHERE user_id = $1 FOR UPDATE`, userID))
}

func (t *marketTx) GetShare(ctx context.Context, userID, beliefID int64, outcome domain.Outcome) (*domain.Share, error) {
	sh := &domain.Share{}
	err := t.tx.QueryRow(ctx,
		`SELECT user_id, belief_id, outcome, quantity, avg_purchase_price FROM shares
		 WHERE user_id = $1 AND belief_id = $2 AND outcome = $3 FOR UPDATE`,
		userID, beliefID, outcome,
	).Scan(&sh.UserID, &sh.BeliefID, &sh.Outcome, &sh.Quantity, &sh.AvgPurchasePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sh, nil
}

func (t *marketTx) ListSharesByBelief(ctx context.Context, beliefID int64) ([]domain.Share, error) {
	return listShares(ctx, t.tx,
		`SELECT user_id, belief_id, outcome, quantity, avg_purchase_price FROM shares
		 WHERE belief_id = $1 ORDER BY user_id, outcome FOR UPDATE`,
		beliefID)
}

func (t *marketTx) SavePool(ctx context.Context, p domain.LiquidityPool) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE liquidity_pools
		 SET yes_shares = $2, no_shares = $3, k = $4, total_volume = $5, status = $6, expires_at = $7, updated_at = $8
		 WHERE belief_id = $1`,
		p.BeliefID, p.YesShares, p.NoShares, p.K, p.TotalVolume, p.Status, p.ExpiresAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *marketTx) SaveBalance(ctx context.Context, b domain.UserBalance) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO user_balances (user_id, current_balance, realized_pnl) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET current_balance = EXCLUDED.current_balance, realized_pnl = EXCLUDED.realized_pnl`,
		b.UserID, b.CurrentBalance, b.RealizedPnL,
	)
	return err
}

func (t *marketTx) SaveShare(ctx context.Context, sh domain.Share) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO shares (user_id, belief_id, outcome, quantity, avg_purchase_price) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, belief_id, outcome) DO UPDATE SET quantity = EXCLUDED.quantity, avg_purchase_price = EXCLUDED.avg_purchase_price`,
		sh.UserID, sh.BeliefID, sh.Outcome, sh.Quantity, sh.AvgPurchasePrice,
	)
	return err
}

func (t *marketTx) DeleteShare(ctx context.Context, userID, beliefID int64, outcome domain.Outcome) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM shares WHERE user_id = $1 AND belief_id = $2 AND outcome = $3`,
		userID, beliefID, outcome,
	)
	return err
}

func (t *marketTx) InsertTrade(ctx context.Context, tr domain.Trade) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO trades (id, user_id, belief_id, outcome, side, amount, shares, price, yes_price_after, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tr.ID, tr.UserID, tr.BeliefID, tr.Outcome, tr.Side, tr.Amount, tr.Shares, tr.Price, tr.YesPriceAfter, tr.ExecutedAt,
	)
	return err
}
