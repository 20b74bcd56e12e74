package auth

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/jrsteele09/go-admin-auth/accounts"
)

// IPPolicy decides whether a superadmin may log in from address
type IPPolicy interface {
	Allowed(account *accounts.Account, address string) bool
}

// AllowAllIPs places no restriction
type AllowAllIPs struct{}

func (AllowAllIPs) Allowed(*accounts.Account, string) bool {
	return true
}

// CIDRPolicy admits addresses inside any of its prefixes. With no prefixes every address is admitted.
type CIDRPolicy struct {
	prefixes []netip.Prefix
}

// NewCIDRPolicy accepts CIDR ranges and bare addresses
func NewCIDRPolicy(entries []string) (*CIDRPolicy, error) {
	policy := &CIDRPolicy{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("[NewCIDRPolicy] %q: %w", entry, err)
			}
			policy.prefixes = append(policy.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("[NewCIDRPolicy] %q: %w", entry, err)
		}
		addr = addr.Unmap()
		policy.prefixes = append(policy.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return policy, nil
}

func (p *CIDRPolicy) Allowed(_ *accounts.Account, address string) bool {
	if len(p.prefixes) == 0 {
		return true
	}
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	addr = addr.Unmap().WithZone("")
	for _, prefix := range p.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
