package club

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCodeTaken       = errors.New("player code is already in use")
	ErrAccountLinked   = errors.New("user account is already linked to another player")
	ErrDuplicateResult = errors.New("player already has a result for this event")
	ErrTierMismatch    = errors.New("event already exists with a different tier")
	ErrBadVisibility   = errors.New("visibility must be public or hidden")
)

// isUniqueViolation matches the constraint message shared by go-sqlite3 and
// libSQL, which return different error types.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
