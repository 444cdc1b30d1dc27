package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrAlreadyExists is returned when an insert hits a uniqueness
	// constraint, e.g. joining a room twice.
	ErrAlreadyExists = errors.New("already exists")
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Relationship rows (memberships, pending invitations, follows)
// rely on this instead of read-then-write checks, which race between
// concurrent handlers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
