package errors

import (
	"errors"
	"fmt"
)

// Common error types for the back-office auth core
var (
	// Store errors
	ErrNotFound     = errors.New("not found")
	ErrAlreadyExist = errors.New("already exists")

	// Password errors
	ErrPasswordEmpty = errors.New("password is empty")
	ErrInvalidHash   = errors.New("invalid password hash")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
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
