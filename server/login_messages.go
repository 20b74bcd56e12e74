package server

import (
	"fmt"
	"math"
	"time"

	"github.com/jrsteele09/go-admin-auth/auth"
)

const (
	msgCredentialsRequired = "Login and password are required"
	msgInvalidCredentials  = "Invalid login or password"
	msgAccountDisabled     = "Your account is disabled. Contact an administrator."
	msgIPNotAllowed        = "Login from this address is not permitted for this account"
	msgInvalidCSRF         = "Your session has expired or the form is invalid. Please try again."
	msgLoggedIn            = "Welcome back"
	msgLoggedOut           = "You have been logged out"
	msgTooManyRequests     = "Too many requests. Slow down and try again."
	msgInternalError       = "Something went wrong. Please try again."
)

// failureMessage maps a refusal onto the text shown to the user. A missing account and
// a wrong password share one message.
func failureMessage(reason auth.FailureReason) string {
	switch reason {
	case auth.ReasonAccountDisabled:
		return msgAccountDisabled
	case auth.ReasonIPNotAllowed:
		return msgIPNotAllowed
	default:
		return msgInvalidCredentials
	}
}

// rateLimitMessage tells a blocked client how long to wait
func rateLimitMessage(until *time.Time, now time.Time) string {
	if until == nil {
		return "Too many failed login attempts. Please try again later."
	}
	minutes := int(math.Ceil(until.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Too many failed login attempts. Try again in %d %s.", minutes, unit)
}
