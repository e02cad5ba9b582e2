package migration

import (
	"errors"
	"fmt"
)

// AuthError means no usable credential for a store. It is the only run-fatal
// error kind: a run aborts before any writes when either side fails auth.
type AuthError struct {
	StoreID string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("no usable credential for store %s: %v", e.StoreID, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ValidationError means a source entity is missing a required field. The
// entity is skipped and the run continues.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
