package errors

import (
	"errors"
	"fmt"
)

// Common error types for the course portal client
var (
	// Session errors
	ErrNoAccessToken   = errors.New("no access token")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden for role")

	// Enrollment errors
	ErrNotEnrollable       = errors.New("offering is not open for enrollment")
	ErrScheduleConflict    = errors.New("schedule conflict with a current enrollment in the same term")
	ErrAlreadyEnrolled     = errors.New("already enrolled in offering")
	ErrOfferingUnavailable = errors.New("offering details unavailable")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnsupported    = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
