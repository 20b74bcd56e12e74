package auth

import "github.com/jrsteele09/go-admin-auth/accounts"

// FailureReason says why a login attempt did not establish a session
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonRateLimited
	ReasonInvalidCredentials
	ReasonAccountDisabled
	ReasonIPNotAllowed
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonInvalidCredentials:
		return "invalid_credentials"
	case ReasonAccountDisabled:
		return "account_disabled"
	case ReasonIPNotAllowed:
		return "ip_not_allowed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Attempt. Account is set only on success.
type Result struct {
	Account *accounts.Account
	Reason  FailureReason
}

func (r Result) Succeeded() bool {
	return r.Reason == ReasonNone && r.Account != nil
}
