package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("connection reset")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"malformed uuid", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, ErrNotFound},
		{"wrapped malformed uuid", fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"}), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrNameTaken},
		{"other", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapPgError(tc.in))
		})
	}

	fk := &pgconn.PgError{Code: "23503"}
	assert.Same(t, fk, mapPgError(fk))
}
