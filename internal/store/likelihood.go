package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikelihoodStore struct {
	db *pgxpool.Pool
}

func NewLikelihoodStore(db *pgxpool.Pool) *LikelihoodStore {
	return &LikelihoodStore{db: db}
}

// CreateEstimate inserts the estimate and its argument tree in one
// transaction. Arguments must be ordered parents first; their ids and parent
// ids are rewritten to the ones the database assigns.
func (s *LikelihoodStore) CreateEstimate(ctx context.Context, e *domain.LikelihoodEstimate) error {
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO likelihood_estimates (likelihood_belief_id, probability, submitted_at)
			 VALUES ($1, $2, $3)
			 RETURNING id, submitted_at`,
			e.LikelihoodBeliefID, e.Probability, e.SubmittedAt,
		).Scan(&e.ID, &e.SubmittedAt)
		if err != nil {
			return fmt.Errorf("insert estimate: %w", err)
		}

		ids := make(map[int64]int64, len(e.Arguments))
		for i := range e.Arguments {
			a := &e.Arguments[i]
			parent := int64(0)
			if a.ParentID != 0 {
				mapped, ok := ids[a.ParentID]
				if !ok {
					return fmt.Errorf("argument %d: parent %d must precede it", a.ID, a.ParentID)
				}
				parent = mapped
			}
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO likelihood_arguments (estimate_id, parent_id, statement, side, truth_score, fallacies)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING id, created_at`,
				e.ID, nullID(parent), a.Statement, a.Side, a.TruthScore, fallacyStrings(a.Fallacies),
			).Scan(&id, &a.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert estimate argument: %w", err)
			}
			ids[a.ID] = id
			a.ID = id
			a.ParentID = parent
			a.BeliefID = e.ID
		}
		return nil
	})
}

func (s *LikelihoodStore) GetBelief(ctx context.Context, id int64) (*domain.LikelihoodBelief, error) {
	b := &domain.LikelihoodBelief{}
	err := s.db.QueryRow(ctx,
		`SELECT id, statement, COALESCE(active_estimate_id, 0), active_likelihood FROM likelihood_beliefs WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Statement, &b.ActiveEstimateID, &b.ActiveLikelihood)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, likelihood_belief_id, probability, is_active, score, submitted_at
		 FROM likelihood_estimates WHERE likelihood_belief_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]int)
	for rows.Next() {
		var e domain.LikelihoodEstimate
		if err := rows.Scan(&e.ID, &e.LikelihoodBeliefID, &e.Probability, &e.IsActive, &e.Score, &e.SubmittedAt); err != nil {
			rows.Close()
			return nil, err
		}
		index[e.ID] = len(b.Estimates)
		b.Estimates = append(b.Estimates, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	argRows, err := s.db.Query(ctx,
		`SELECT a.id, a.estimate_id, COALESCE(a.parent_id, 0), a.statement, a.side, a.truth_score, a.fallacies, a.created_at
		 FROM likelihood_arguments a JOIN likelihood_estimates e ON e.id = a.estimate_id
		 WHERE e.likelihood_belief_id = $1 ORDER BY a.id`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer argRows.Close()

	for argRows.Next() {
		var a domain.Argument
		var fallacies []string
		if err := argRows.Scan(&a.ID, &a.BeliefID, &a.ParentID, &a.Statement, &a.Side, &a.TruthScore, &fallacies, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Fallacies = fallacyTypes(fallacies)
		if i, ok := index[a.BeliefID]; ok {
			b.Estimates[i].Arguments = append(b.Estimates[i].Arguments, a)
		}
	}
	return b, argRows.Err()
}

// SetActive records the resolver outcome: flags exactly one estimate active
// and stores every estimate's score.
func (s *LikelihoodStore) SetActive(ctx context.Context, beliefID, activeEstimateID int64, activeLikelihood float64, scores map[int64]float64) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for estimateID, score := range scores {
			if _, err := tx.Exec(ctx,
				`UPDATE likelihood_estimates SET score = $2 WHERE id = $1 AND likelihood_belief_id = $3`,
				estimateID, score, beliefID,
			); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx,
			`UPDATE likelihood_estimates SET is_active = (id = $2) WHERE likelihood_belief_id = $1`,
			beliefID, activeEstimateID,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE likelihood_beliefs SET active_estimate_id = NULLIF($2, 0), active_likelihood = $3 WHERE id = $1`,
			beliefID, activeEstimateID, activeLikelihood,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
