package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique index.
// The database constraint is authoritative for uniqueness; callers may
// pre-check for a friendlier message, but a lost race still surfaces
// here rather than as an internal error.
var ErrConflict = errors.New("conflict")

const uniqueViolation = "23505"

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
