package budget

import (
	"errors"
	"fmt"
)

// ErrAlreadyAdjusted is returned when an underflow adjustment was already
// applied for the current day.
var ErrAlreadyAdjusted = errors.New("underflow adjustment already applied today")

// ValidationError reports input the allocator refuses to apply.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError reports a failed write-through or load. The allocator's
// in-memory state may no longer match the store; callers either retry or
// call Reload.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
