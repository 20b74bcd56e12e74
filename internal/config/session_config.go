package config

import (
	"net/http"
	"strings"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	defaultSessionMemorySize = 10000
)

type SessionConfig interface {
	GetSessionLifetime() time.Duration
	GetSessionCookieName() string
	GetSessionCookieSecure() bool
	GetSessionCookieHTTPOnly() bool
	GetSessionCookieSameSite() http.SameSite
	GetSessionStrictMode() bool
	GetSessionStore() string
	GetSessionMemorySize() int
	GetRedisURL() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionLifetime is the idle lifetime; SESSION_LIFETIME is given in minutes
func (Session) GetSessionLifetime() time.Duration {
	minutes := getEnvInt("SESSION_LIFETIME", 15)
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "admin_session")
}

func (Session) GetSessionCookieSecure() bool {
	return getEnvBool("SESSION_COOKIE_SECURE", false)
}

func (Session) GetSessionCookieHTTPOnly() bool {
	return getEnvBool("SESSION_COOKIE_HTTPONLY", true)
}

func (Session) GetSessionCookieSameSite() http.SameSite {
	return ParseSameSite(GetEnv("SESSION_COOKIE_SAMESITE", "Lax"))
}

func (Session) GetSessionStrictMode() bool {
	return getEnvBool("SESSION_USE_STRICT_MODE", false)
}

func (Session) GetSessionStore() string {
	return strings.ToLower(GetEnv("SESSION_STORE", SessionStoreMemory))
}

// GetSessionMemorySize caps anonymous and authenticated sessions separately in the memory store
func (Session) GetSessionMemorySize() int {
	size := getEnvInt("SESSION_MEMORY_SIZE", defaultSessionMemorySize)
	if size <= 0 {
		size = defaultSessionMemorySize
	}
	return size
}

func (Session) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

// ParseSameSite maps Lax/Strict/None onto http.SameSite, defaulting to Lax
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
