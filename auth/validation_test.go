package auth_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-admin-auth/auth"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateCredentials("jdoe", "secret"))
	require.ErrorIs(t, v.ValidateCredentials("", "secret"), auth.ErrCredentialsRequired)
	require.ErrorIs(t, v.ValidateCredentials("jdoe", ""), auth.ErrCredentialsRequired)
	require.ErrorIs(t, v.ValidateCredentials(strings.Repeat("a", 129), "secret"), auth.ErrLoginTooLong)
	require.ErrorIs(t, v.ValidateCredentials("jdoe", strings.Repeat("p", 1025)), auth.ErrPasswordTooLong)
}

func TestNormalizeLogin(t *testing.T) {
	v := auth.NewValidator()
	require.Equal(t, "JDoe", v.NormalizeLogin("  JDoe\t"))
}

func TestCIDRPolicy(t *testing.T) {
	policy, err := auth.NewCIDRPolicy([]string{"10.0.0.0/8", "192.0.2.10", " ", "2001:db8::/32"})
	require.NoError(t, err)

	require.True(t, policy.Allowed(nil, "10.20.30.40"))
	require.True(t, policy.Allowed(nil, "192.0.2.10"))
	require.True(t, policy.Allowed(nil, "::ffff:10.1.1.1"))
	require.True(t, policy.Allowed(nil, "2001:db8::1"))
	require.False(t, policy.Allowed(nil, "192.0.2.11"))
	require.False(t, policy.Allowed(nil, "not an address"))
}

func TestCIDRPolicyEmptyAllowsAll(t *testing.T) {
	policy, err := auth.NewCIDRPolicy(nil)
	require.NoError(t, err)
	require.True(t, policy.Allowed(nil, "203.0.113.1"))
	require.True(t, auth.AllowAllIPs{}.Allowed(nil, "anything"))
}

func TestCIDRPolicyInvalidEntry(t *testing.T) {
	_, err := auth.NewCIDRPolicy([]string{"10.0.0.0/99"})
	require.Error(t, err)
	_, err = auth.NewCIDRPolicy([]string{"localhost"})
	require.Error(t, err)
}
