package config

import "time"

type RateLimitConfig interface {
	GetRateLimitAttempts() int
	GetRateLimitBlockDuration() time.Duration
}

type RateLimit struct{}

var _ RateLimitConfig = RateLimit{}

func (RateLimit) GetRateLimitAttempts() int {
	attempts := getEnvInt("RATE_LIMIT_ATTEMPTS", 3)
	if attempts <= 0 {
		return 3
	}
	return attempts
}

// GetRateLimitBlockDuration reads RATE_LIMIT_MINUTES
func (RateLimit) GetRateLimitBlockDuration() time.Duration {
	minutes := getEnvInt("RATE_LIMIT_MINUTES", 15)
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
