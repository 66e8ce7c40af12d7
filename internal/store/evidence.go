package store

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EvidenceStore struct {
	db *pgxpool.Pool
}

func NewEvidenceStore(db *pgxpool.Pool) *EvidenceStore {
	return &EvidenceStore{db: db}
}

func (s *EvidenceStore) Create(ctx context.Context, e *domain.Evidence) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO evidence (belief_id, argument_id, title, url, side, source_independence_weight, replication_quantity, conclusion_relevance, replication_percentage, quality_tier)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		e.BeliefID, nullID(e.ArgumentID), e.Title, e.URL, e.Side, e.SourceIndependenceWeight, e.ReplicationQuantity, e.ConclusionRelevance, e.ReplicationPercentage, e.QualityTier,
	).Scan(&e.ID, &e.CreatedAt)
	return translate(err)
}

func (s *EvidenceStore) ListByBelief(ctx context.Context, beliefID int64) ([]domain.Evidence, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, belief_id, COALESCE(argument_id, 0), title, url, side, source_independence_weight, replication_quantity, conclusion_relevance, replication_percentage, quality_tier, created_at
		 FROM evidence WHERE belief_id = $1 ORDER BY id`,
		beliefID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Evidence
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(&e.ID, &e.BeliefID, &e.ArgumentID, &e.Title, &e.URL, &e.Side, &e.SourceIndependenceWeight, &e.ReplicationQuantity, &e.ConclusionRelevance, &e.ReplicationPercentage, &e.QualityTier, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type ScoreHistoryStore struct {
	db *pgxpool.Pool
}

func NewScoreHistoryStore(db *pgxpool.Pool) *ScoreHistoryStore {
	return &ScoreHistoryStore{db: db}
}

func (s *ScoreHistoryStore) Append(ctx context.Context, p domain.ScorePoint) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO score_history (belief_id, truth_score, recorded_at) VALUES ($1, $2, $3)`,
		p.BeliefID, p.TruthScore, p.RecordedAt,
	)
	return err
}

func (s *ScoreHistoryStore) ListSince(ctx context.Context, beliefID int64, since time.Time) ([]domain.ScorePoint, error) {
	rows, err := s.db.Query(ctx,
		`SELECT belief_id, truth_score, recorded_at FROM score_history
		 WHERE belief_id = $1 AND recorded_at >= $2
		 ORDER BY recorded_at`,
		beliefID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScorePoint
	for rows.Next() {
		var p domain.ScorePoint
		if err := rows.Scan(&p.BeliefID, &p.TruthScore, &p.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
