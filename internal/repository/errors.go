package repository

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// IsUndefinedTable reports a query against a table that has not been created
// yet (init-db not run).
func IsUndefinedTable(err error) bool {
	return pgCode(err) == pgUndefinedTable
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsUnavailable reports connection-level failures: connection exceptions
// (class 08), network errors and refused connections.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if strings.HasPrefix(pgCode(err), "08") {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Cause names the failure class of err for structured logs.
func Cause(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUndefinedTable(err):
		return "schema_missing"
	case IsUniqueViolation(err):
		return "duplicate"
	case IsUnavailable(err):
		return "unavailable"
	default:
		return "query_failed"
	}
}
