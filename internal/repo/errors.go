package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an insert violated a unique index. The store's
// constraint is the authoritative uniqueness check; callers translate this
// into a domain conflict.
var ErrDuplicate = errors.New("duplicate")

// isDuplicate detects unique-constraint violations across drivers. With
// TranslateError enabled GORM maps most of them to gorm.ErrDuplicatedKey;
// the text checks cover drivers that return plain errors.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite: "UNIQUE constraint failed"; Postgres: "duplicate key value violates unique constraint"
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// mapCreateErr converts unique violations into ErrDuplicate and passes any
// other error through.
func mapCreateErr(err error) error {
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}
