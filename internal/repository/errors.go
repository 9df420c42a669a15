package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the id and owner.
	ErrNotFound = errors.New("record not found")
	// ErrNameTaken is returned when a user name is already registered.
	ErrNameTaken = errors.New("name already registered")
)

// Postgres error codes the repositories translate.
const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

// mapPgError folds driver errors into repository sentinels. A malformed
// uuid cannot match any row, so it reads as not found.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepresent:
			return ErrNotFound
		case pgUniqueViolation:
			return ErrNameTaken
		}
	}
	return err
}
