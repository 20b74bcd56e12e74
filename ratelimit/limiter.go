package ratelimit

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts   = 3
	DefaultBlockDuration = 15 * time.Minute
)

// Limiter counts failed logins per client address and blocks an address once
// MaxAttempts failures accumulate, for BlockDuration.
type Limiter struct {
	repo          Repo
	maxAttempts   int
	blockDuration time.Duration
	nowTime       func() time.Time
}

type LimiterOption func(*Limiter)

func WithMaxAttempts(n int) LimiterOption {
	return func(l *Limiter) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

func WithBlockDuration(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		if d > 0 {
			l.blockDuration = d
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) LimiterOption {
	return func(l *Limiter) {
		l.nowTime = nowFunc
	}
}

func NewLimiter(repo Repo, options ...LimiterOption) (*Limiter, error) {
	if repo == nil {
		return nil, errors.New("[NewLimiter] repo is required")
	}
	l := &Limiter{
		repo:          repo,
		maxAttempts:   DefaultMaxAttempts,
		blockDuration: DefaultBlockDuration,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) MaxAttempts() int {
	return l.maxAttempts
}

func (l *Limiter) IsBlocked(ctx context.Context, address string) (bool, error) {
	until, err := l.BlockedUntil(ctx, address)
	if err != nil {
		return false, err
	}
	return until != nil, nil
}

// BlockedUntil returns the block expiry, or nil when the address is not blocked right now
func (l *Limiter) BlockedUntil(ctx context.Context, address string) (*time.Time, error) {
	rec, err := l.get(ctx, address)
	if err != nil || rec == nil {
		return nil, err
	}
	if !rec.IsBlocked(l.nowTime()) {
		return nil, nil
	}
	until := *rec.BlockedUntil
	return &until, nil
}

// Attempts returns the current failure count, 0 when no record exists
func (l *Limiter) Attempts(ctx context.Context, address string) (int, error) {
	rec, err := l.get(ctx, address)
	if err != nil || rec == nil {
		return 0, err
	}
	return rec.Attempts, nil
}

// LogAttempt records one failed login from address. While blocked the counter is frozen;
// an expired block restarts counting from zero.
func (l *Limiter) LogAttempt(ctx context.Context, address, login string) error {
	if !claim(ctx, address) {
		return nil
	}

	now := l.nowTime()
	var blockedNow bool
	err := l.repo.Update(ctx, address, func(rec *Record) error {
		if rec.Login == nil && login != "" {
			name := login
			rec.Login = &name
		}
		rec.LastAttempt = now

		if rec.IsBlocked(now) {
			return nil
		}
		if rec.BlockedUntil != nil {
			rec.Attempts = 0
			rec.BlockedUntil = nil
		}

		rec.Attempts++
		if rec.Attempts >= l.maxAttempts {
			until := now.Add(l.blockDuration)
			rec.BlockedUntil = &until
			blockedNow = true
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "[Limiter LogAttempt]")
	}

	if blockedNow {
		log.Warn().Str("security", "login_blocked").Str("address", address).
			Str("login", login).Dur("duration", l.blockDuration).Msg("address blocked after repeated failed logins")
	}
	return nil
}

// ClearAttempts resets the counter and lifts any block; unknown addresses are left alone
func (l *Limiter) ClearAttempts(ctx context.Context, address string) error {
	if err := l.repo.Clear(ctx, address, l.nowTime()); err != nil {
		return errors.Wrap(err, "[Limiter ClearAttempts]")
	}
	return nil
}

func (l *Limiter) get(ctx context.Context, address string) (*Record, error) {
	rec, err := l.repo.Get(ctx, address)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Limiter]")
	}
	return rec, nil
}
