package auth

import "errors"

var (
	ErrCredentialsRequired = errors.New("login and password are required")
	ErrLoginTooLong        = errors.New("login too long")
	ErrPasswordTooLong     = errors.New("password too long")
)
