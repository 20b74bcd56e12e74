package config

type SecurityConfig interface {
	GetSuperadminAllowedIPs() []string
	GetLoginThrottlePerSecond() float64
	GetLoginThrottleBurst() int
	GetTrustProxyHeaders() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSuperadminAllowedIPs returns addresses or CIDR ranges superadmins may log in from.
// An empty list permits every address.
func (Security) GetSuperadminAllowedIPs() []string {
	return getEnvList("SUPERADMIN_ALLOWED_IPS")
}

func (Security) GetLoginThrottlePerSecond() float64 {
	return getEnvFloat("LOGIN_THROTTLE_PER_SECOND", 2)
}

func (Security) GetLoginThrottleBurst() int {
	return getEnvInt("LOGIN_THROTTLE_BURST", 10)
}

// GetTrustProxyHeaders makes the client address come from X-Forwarded-For.
// Only enable behind a proxy that overwrites the header.
func (Security) GetTrustProxyHeaders() bool {
	return getEnvBool("TRUST_PROXY_HEADERS", false)
}
