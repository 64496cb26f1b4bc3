package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("list programs failed: %w", &pgconn.PgError{Code: "42P01"})

	assert.True(t, IsUndefinedTable(wrapped))
	assert.False(t, IsUnavailable(wrapped))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUnavailable(&pgconn.PgError{Code: "08006"}))
	assert.True(t, IsUnavailable(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")))
	assert.False(t, IsUnavailable(nil))
}

func TestCause(t *testing.T) {
	assert.Equal(t, "", Cause(nil))
	assert.Equal(t, "schema_missing", Cause(fmt.Errorf("x: %w", &pgconn.PgError{Code: "42P01"})))
	assert.Equal(t, "duplicate", Cause(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "unavailable", Cause(errors.New("connection refused")))
	assert.Equal(t, "query_failed", Cause(errors.New("syntax error")))
}
