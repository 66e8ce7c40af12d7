// Package store implements the domain store interfaces on PostgreSQL.
package store

import (
	"errors"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = domain.ErrNotFound
	ErrConflict = errors.New("conflict")
)

// translate maps constraint violations onto the store sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
	}
	return err
}

// nullID maps the zero id to SQL NULL for optional parent references.
func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func fallacyStrings(fs []domain.FallacyType) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func fallacyTypes(ss []string) []domain.FallacyType {
	if len(ss) == 0 {
		return nil
	}
	out := make([]domain.FallacyType, len(ss))
	for i, s := range ss {
		out[i] = domain.FallacyType(s)
	}
	return out
}
