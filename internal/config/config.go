package config

type Config interface {
	EnvConfig
	SecurityConfig
	SessionConfig
	RateLimitConfig
	DatabaseConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSystemAdminLogin() string
	GetSystemAdminPassword() string
}

type mainConfig struct {
	EnvVars
	Security
	Session
	RateLimit
	Database
}

func New() Config {
	return mainConfig{}
}
