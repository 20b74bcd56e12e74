package auth

import "strings"

const (
	maxLoginLength = 128
	// argon2 and bcrypt both accept longer input, but there is no reason to hash megabytes
	maxPasswordLength = 1024
)

// Validator checks login form input before any store access happens
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// NormalizeLogin trims surrounding whitespace; logins are otherwise case sensitive
func (v *Validator) NormalizeLogin(login string) string {
	return strings.TrimSpace(login)
}

// ValidateCredentials rejects empty or oversized input
func (v *Validator) ValidateCredentials(login, password string) error {
	if login == "" || password == "" {
		return ErrCredentialsRequired
	}
	if len(login) > maxLoginLength {
		return ErrLoginTooLong
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
