package services

import (
	"errors"

	"modernc.org/sqlite"
)

// SQLITE_CONSTRAINT_UNIQUE extended result code.
const sqliteConstraintUnique = 2067

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure, without matching on error text.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqliteConstraintUnique
}
