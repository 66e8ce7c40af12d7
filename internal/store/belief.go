package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type BeliefStore struct {
	db *pgxpool.Pool
}

func NewBeliefStore(db *pgxpool.Pool) *BeliefStore {
	return &BeliefStore{db: db}
}

func (s *BeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	var embedding *pgvector.Vector
	if len(b.Embedding) > 0 {
		v := pgvector.NewVector(b.Embedding)
		embedding = &v
	}
	if b.Status == "" {
		b.Status = domain.BeliefEmerging
	}
	if b.Volatility == "" {
		b.Volatility = domain.VolatilityLow
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO beliefs (statement, status, truth_score, confidence_interval, volatility, adversarial_cycles, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		b.Statement, b.Status, b.TruthScore, b.ConfidenceInterval, b.Volatility, b.AdversarialCycles, embedding,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (s *BeliefStore) GetByID(ctx context.Context, id int64) (*domain.Belief, error) {
	b := &domain.Belief{}
	err := s.db.QueryRow(ctx,
		`SELECT id, statement, status, truth_score, confidence_interval, volatility, adversarial_cycles, created_at, updated_at
		 FROM beliefs WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Statement, &b.Status, &b.TruthScore, &b.ConfidenceInterval, &b.Volatility, &b.AdversarialCycles, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BeliefStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM beliefs WHERE status <> 'archived' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *BeliefStore) UpdateScores(ctx context.Context, id int64, scores domain.BeliefScores, adversarialCycles int) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs
		 SET truth_score = $2, confidence_interval = $3, volatility = $4, adversarial_cycles = $5, updated_at = NOW()
		 WHERE id = $1`,
		id, scores.TruthScore, scores.ConfidenceInterval, scores.Volatility, adversarialCycles,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BeliefStore) SetEmbedding(ctx context.Context, id int64, embedding []float32) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET embedding = $2 WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SemanticSimilarity returns 1 - cosine distance of the two stored
// embeddings. Missing embeddings count as not found.
func (s *BeliefStore) SemanticSimilarity(ctx context.Context, a, b int64) (float64, error) {
	var sim float64
	err := s.db.QueryRow(ctx,
		`SELECT 1 - (x.embedding <=> y.embedding)
		 FROM beliefs x, beliefs y
		 WHERE x.id = $1 AND y.id = $2 AND x.embedding IS NOT NULL AND y.embedding IS NOT NULL`,
		a, b,
	).Scan(&sim)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("semantic similarity: %w", err)
	}
	return sim, nil
}
