package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrMissingReference is returned when a write references a user or post that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// DuplicateError reports a uniqueness violation. Field names the column
// (or logical key) that collided, e.g. "username", "email", "friendship".
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate record"
	}
	return e.Field + " already exists"
}

// IsDuplicate reports whether err is a uniqueness violation, optionally on a given field.
func IsDuplicate(err error, field string) bool {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	return field == "" || dup.Field == field
}

// translateError maps driver errors to the package's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DuplicateError{Field: fieldFromConstraint(pgErr.ConstraintName)}
		case pgForeignKeyViolation:
			return ErrMissingReference
		}
	}
	return err
}

func fieldFromConstraint(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "username"):
		return "username"
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "firebase"):
		return "firebase_uid"
	case strings.Contains(name, "friendship"):
		return "friendship"
	case strings.Contains(name, "like"):
		return "like"
	default:
		return ""
	}
}
