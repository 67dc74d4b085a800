package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when a lookup matches no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrConstraintViolation is returned when a write breaks a uniqueness or foreign key constraint.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrConnectionFailure covers every other failure talking to the store.
	ErrConnectionFailure = errors.New("store unavailable")
)

// translateError maps GORM errors onto the repository error set. The DB must be
// opened with TranslateError enabled for driver constraint errors to map.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrRecordNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolation, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrConnectionFailure, err)
	}
}
