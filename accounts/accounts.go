package accounts

import (
	"fmt"
	"time"
	"unicode"
)

// Account is a back-office employee able to log in
type Account struct {
	ID           int64      `json:"id"`
	UUID         string     `json:"uuid"`
	Login        string     `json:"login"`
	FullName     string     `json:"full_name,omitempty"`
	PasswordHash string     `json:"-"` // never serialize
	IsActive     bool       `json:"is_active"`
	RoleID       *int64     `json:"role_id,omitempty"`
	RoleName     string     `json:"role_name,omitempty"`
	IsSuperadmin bool       `json:"is_superadmin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	DeletedAt    *time.Time `json:"-"`
}

// DisplayName is the full name when present, otherwise the login
func (a *Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Login
}

// HasRole reports whether the account is bound to a role
func (a *Account) HasRole() bool {
	return a.RoleID != nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}
