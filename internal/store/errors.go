package store

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness constraint.
var ErrConflict = errors.New("already exists")

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// Postgres is the production driver; the SQLite branch covers the driver
// used by the test suite.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
