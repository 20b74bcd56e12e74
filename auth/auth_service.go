package auth

import (
	"context"

	"github.com/jrsteele09/go-admin-auth/accounts"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/ratelimit"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service authenticates back-office logins. It checks the rate limiter, the credential
// store and the superadmin IP policy, then binds the account to the session.
type Service struct {
	accounts accounts.Repo
	limiter  *ratelimit.Limiter
	sessions *sessions.Manager
	ipPolicy IPPolicy
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithIPPolicy restricts the addresses superadmins may log in from
func WithIPPolicy(policy IPPolicy) ServiceOption {
	return func(as *Service) {
		if policy != nil {
			as.ipPolicy = policy
		}
	}
}

func NewService(
	accountRepo accounts.Repo,
	limiter *ratelimit.Limiter,
	manager *sessions.Manager,
	options ...ServiceOption,
) (*Service, error) {
	if accountRepo == nil {
		return nil, errors.New("[NewService] accounts repo is required")
	}
	if limiter == nil {
		return nil, errors.New("[NewService] limiter is required")
	}
	if manager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}

	as := &Service{
		accounts: accountRepo,
		limiter:  limiter,
		sessions: manager,
		ipPolicy: AllowAllIPs{},
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Attempt tries to log login in from address. A non-nil error is an infrastructure fault;
// a refused login is reported through Result.Reason. Attempt never records the failure
// itself: callers log exactly one attempt per failed request.
func (as *Service) Attempt(ctx context.Context, s *sessions.Session, address, login, password string) (Result, error) {
	blocked, err := as.limiter.IsBlocked(ctx, address)
	if err != nil {
		return Result{}, errors.Wrap(err, "[Service Attempt]")
	}
	if blocked {
		return Result{Reason: ReasonRateLimited}, nil
	}

	account, err := as.accounts.FindByLogin(ctx, login)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		accounts.DummyCheck(password)
		return Result{Reason: ReasonInvalidCredentials}, nil
	}
	if err != nil {
		return Result{}, errors.Wrap(err, "[Service Attempt]")
	}

	if !account.IsActive {
		return Result{Reason: ReasonAccountDisabled}, nil
	}

	if !accounts.CheckPasswordHash(password, account.PasswordHash) {
		return Result{Reason: ReasonInvalidCredentials}, nil
	}

	if account.IsSuperadmin && !as.ipPolicy.Allowed(account, address) {
		log.Warn().Str("security", "superadmin_ip_denied").Str("address", address).
			Str("login", account.Login).Msg("superadmin login refused from address outside the allow list")
		return Result{Reason: ReasonIPNotAllowed}, nil
	}

	if err := as.sessions.Establish(ctx, s, account); err != nil {
		return Result{}, errors.Wrap(err, "[Service Attempt]")
	}
	if err := as.limiter.ClearAttempts(ctx, address); err != nil {
		return Result{}, errors.Wrap(err, "[Service Attempt]")
	}

	log.Info().Str("login", account.Login).Str("address", address).Msg("login succeeded")
	return Result{Account: account}, nil
}

// Logout destroys the session
func (as *Service) Logout(ctx context.Context, s *sessions.Session) error {
	if err := as.sessions.Terminate(ctx, s); err != nil {
		return errors.Wrap(err, "[Service Logout]")
	}
	return nil
}
