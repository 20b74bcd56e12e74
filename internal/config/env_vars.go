package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	logLevelVar    = "LOG_LEVEL"
	adminLoginVar  = "SYSTEM_ADMIN_LOGIN"
	adminPassword  = "SYSTEM_ADMIN_PASSWORD"
	defaultAppName = "Back Office"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, defaultAppName)
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "DEV")
}

// GetLogLevel returns a zerolog level name (trace, debug, info, warn, error)
func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetSystemAdminLogin is the login of the superadmin seeded on first start
func (EnvVars) GetSystemAdminLogin() string {
	return GetEnv(adminLoginVar, "admin")
}

// GetSystemAdminPassword is empty unless set; an empty value makes the bootstrap generate one
func (EnvVars) GetSystemAdminPassword() string {
	return GetEnv(adminPassword, "")
}

// GetEnv looks up envVar in the process environment, then in the loaded config file,
// and falls back to defaultValue.
func GetEnv(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := fileValue(envVar); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(envVar string, defaultValue int) int {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(envVar string, defaultValue float64) float64 {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(envVar string, defaultValue bool) bool {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvList(envVar string) []string {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
