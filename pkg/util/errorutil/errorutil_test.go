package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		base := NewConflict("name already registered", map[string]any{"name": "alice"})
		got := ToDomainError(fmt.Errorf("register: %w", base))
		require.NotNil(t, got)
		assert.Equal(t, "CONFLICT", got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
		assert.Equal(t, "alice", got.Details["name"])
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		got := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
		assert.Equal(t, "NOT_FOUND", got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := ToDomainError(cause)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("product", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("no"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("no"), "FORBIDDEN", http.StatusForbidden},
		{NewUnavailable("off"), "UNAVAILABLE", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			got := ToDomainError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}
	assert.Equal(t, "product not found", NewNotFound("product", nil).Error())
}
