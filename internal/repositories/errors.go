package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrReferenced is returned when deleting a record other rows still point at
	ErrReferenced = errors.New("record is still referenced")

	// ErrNotDraft is returned when a draft-only write finds the result submitted
	ErrNotDraft = errors.New("result is no longer a draft")
)

// DuplicateError reports a uniqueness violation on the named constraint
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	if e.Constraint == "" {
		return "duplicate key value"
	}
	return fmt.Sprintf("duplicate key value violates unique constraint %q", e.Constraint)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// AsDuplicateError extracts a DuplicateError from err's chain
func AsDuplicateError(err error) (*DuplicateError, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
