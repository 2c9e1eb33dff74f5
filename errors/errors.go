package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWorkerPanic              = fmt.Errorf("worker panic")
	ErrValidation               = fmt.Errorf("validation failed")
	ErrParticipantAlreadyExists = fmt.Errorf("participant already exists")
	ErrParticipantNotFound      = fmt.Errorf("participant not found")
	ErrMessageNotFound          = fmt.Errorf("message not found")
	ErrForbidden                = fmt.Errorf("message is owned by another participant")
	ErrStorage                  = fmt.Errorf("storage failure")
	ErrEmptyWords               = fmt.Errorf("no words have been found")
)

// ValidationError carries every violation found in a payload so the caller
// can fix the whole request at once.
type ValidationError struct {
	Violations []string
}

func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(v.Violations, "; "))
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Is and As are re-exported so callers importing this package under its
// natural name keep access to the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
