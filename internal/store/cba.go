package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CBAStore struct {
	db *pgxpool.Pool
}

func NewCBAStore(db *pgxpool.Pool) *CBAStore {
	return &CBAStore{db: db}
}

const lineItemQuery = `SELECT i.id, i.cba_id, i.description, i.type, i.predicted_impact, i.expected_value, i.updated_at,
	        l.id, l.statement, COALESCE(l.active_estimate_id, 0), l.active_likelihood
	 FROM cba_line_items i JOIN likelihood_beliefs l ON l.id = i.likelihood_belief_id`

func scanLineItem(row pgx.Row, it *domain.CBALineItem) error {
	return row.Scan(&it.ID, &it.CBAID, &it.Description, &it.Type, &it.PredictedImpact, &it.ExpectedValue, &it.UpdatedAt,
		&it.Likelihood.ID, &it.Likelihood.Statement, &it.Likelihood.ActiveEstimateID, &it.Likelihood.ActiveLikelihood)
}

func (s *CBAStore) GetByID(ctx context.Context, id int64) (*domain.CBA, error) {
	c := &domain.CBA{}
	err := s.db.QueryRow(ctx,
		`SELECT id, title, total_expected_benefits, total_expected_costs, net_expected_value FROM cbas WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Title, &c.TotalExpectedBenefits, &c.TotalExpectedCosts, &c.NetExpectedValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx, lineItemQuery+` WHERE i.cba_id = $1 ORDER BY i.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CBALineItem
		if err := scanLineItem(rows, &it); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// CreateItem inserts the line item together with its likelihood belief.
func (s *CBAStore) CreateItem(ctx context.Context, item *domain.CBALineItem) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		statement := item.Likelihood.Statement
		if statement == "" {
			statement = "Likelihood: " + item.Description
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO likelihood_beliefs (statement, active_likelihood) VALUES ($1, $2) RETURNING id`,
			statement, item.Likelihood.ActiveLikelihood,
		).Scan(&item.Likelihood.ID); err != nil {
			return err
		}
		item.Likelihood.Statement = statement

		return tx.QueryRow(ctx,
			`INSERT INTO cba_line_items (cba_id, description, type, predicted_impact, likelihood_belief_id, expected_value)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, updated_at`,
			item.CBAID, item.Description, item.Type, item.PredictedImpact, item.Likelihood.ID, item.ExpectedValue,
		).Scan(&item.ID, &item.UpdatedAt)
	})
}

func (s *CBAStore) GetItemByLikelihoodBelief(ctx context.Context, likelihoodBeliefID int64) (*domain.CBALineItem, error) {
	it := &domain.CBALineItem{}
	err := scanLineItem(s.db.QueryRow(ctx, lineItemQuery+` WHERE i.likelihood_belief_id = $1`, likelihoodBeliefID), it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (s *CBAStore) UpdateItemExpectedValue(ctx context.Context, itemID int64, expectedValue decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE cba_line_items SET expected_value = $2, updated_at = NOW() WHERE id = $1`,
		itemID, expectedValue,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CBAStore) UpdateTotals(ctx context.Context, cbaID int64, benefits, costs, net decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE cbas SET total_expected_benefits = $2, total_expected_costs = $3, net_expected_value = $4 WHERE id = $1`,
		cbaID, benefits, costs, net,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
