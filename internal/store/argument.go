package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ArgumentStore struct {
	db *pgxpool.Pool
}

func NewArgumentStore(db *pgxpool.Pool) *ArgumentStore {
	return &ArgumentStore{db: db}
}

const argumentColumns = `id, belief_id, COALESCE(parent_id, 0), statement, side, depth, truth_score, linkage_score, impact_score, fallacies, created_at`

func scanArgument(row pgx.Row, a *domain.Argument) error {
	var fallacies []string
	if err := row.Scan(&a.ID, &a.BeliefID, &a.ParentID, &a.Statement, &a.Side, &a.Depth, &a.TruthScore, &a.LinkageScore, &a.ImpactScore, &fallacies, &a.CreatedAt); err != nil {
		return err
	}
	a.Fallacies = fallacyTypes(fallacies)
	return nil
}

func (s *ArgumentStore) Create(ctx context.Context, a *domain.Argument) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO arguments (belief_id, parent_id, statement, side, depth, truth_score, linkage_score, impact_score, fallacies)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		a.BeliefID, nullID(a.ParentID), a.Statement, a.Side, a.Depth, a.TruthScore, a.LinkageScore, a.ImpactScore, fallacyStrings(a.Fallacies),
	).Scan(&a.ID, &a.CreatedAt)
	return translate(err)
}

func (s *ArgumentStore) GetByID(ctx context.Context, id int64) (*domain.Argument, error) {
	a := &domain.Argument{}
	err := scanArgument(s.db.QueryRow(ctx, `SELECT `+argumentColumns+` FROM arguments WHERE id = $1`, id), a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *ArgumentStore) ListByBelief(ctx context.Context, beliefID int64) ([]domain.Argument, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+argumentColumns+` FROM arguments WHERE belief_id = $1 ORDER BY id`,
		beliefID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var args []domain.Argument
	for rows.Next() {
		var a domain.Argument
		if err := scanArgument(rows, &a); err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, rows.Err()
}

func (s *ArgumentStore) UpdateDerived(ctx context.Context, id int64, linkageScore, impactScore float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE arguments SET linkage_score = $2, impact_score = $3 WHERE id = $1`,
		id, linkageScore, impactScore,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ArgumentStore) SetFallacies(ctx context.Context, id int64, fallacies []domain.FallacyType) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE arguments SET fallacies = $2 WHERE id = $1`,
		id, fallacyStrings(fallacies),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type LinkageStore struct {
	db *pgxpool.Pool
}

func NewLinkageStore(db *pgxpool.Pool) *LinkageStore {
	return &LinkageStore{db: db}
}

func (s *LinkageStore) Create(ctx context.Context, l *domain.LinkageArgument) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO linkage_arguments (argument_id, side, strength, statement)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		l.ArgumentID, l.Side, l.Strength, l.Statement,
	).Scan(&l.ID, &l.CreatedAt)
	return translate(err)
}

func (s *LinkageStore) ListByArgument(ctx context.Context, argumentID int64) ([]domain.LinkageArgument, error) {
	return s.list(ctx,
		`SELECT id, argument_id, side, strength, statement, created_at
		 FROM linkage_arguments WHERE argument_id = $1 ORDER BY id`,
		argumentID)
}

func (s *LinkageStore) ListByBelief(ctx context.Context, beliefID int64) ([]domain.LinkageArgument, error) {
	return s.list(ctx,
		`SELECT l.id, l.argument_id, l.side, l.strength, l.statement, l.created_at
		 FROM linkage_arguments l JOIN arguments a ON a.id = l.argument_id
		 WHERE a.belief_id = $1 ORDER BY l.id`,
		beliefID)
}

func (s *LinkageStore) list(ctx context.Context, query string, id int64) ([]domain.LinkageArgument, error) {
	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LinkageArgument
	for rows.Next() {
		var l domain.LinkageArgument
		if err := rows.Scan(&l.ID, &l.ArgumentID, &l.Side, &l.Strength, &l.Statement, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
