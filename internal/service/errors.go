package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("access denied")
	ErrUserNotFound         = errors.New("user not found")
	ErrTrainerNotFound      = errors.New("trainer not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrTrainerExists        = errors.New("trainer profile already exists")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
)

// validationError wraps ErrValidation with a human readable reason.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
