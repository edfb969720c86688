// Package policy holds per-tenant membership rules. Every lookup takes an
// explicit tenant ID; tenants without an entry get the defaults.
package policy

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
)

var prefixPattern = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

// Policy is the effective rule set for one tenant.
//
// RequireGeography turns an unresolvable geography reference into a
// registration failure instead of a dropped field. ProvisionAccounts creates
// identity accounts for admin-assisted registrations that arrive without one.
// AllowManualExpiry lets administrators expire a membership before its term ends.
type Policy struct {
	RequireGeography       bool          `yaml:"require_geography"`
	RequireIdentity        bool          `yaml:"require_identity"`
	ProvisionAccounts      bool          `yaml:"provision_accounts"`
	MembershipCodes        CodePolicy    `yaml:"membership_codes"`
	MembershipTerm         time.Duration `yaml:"membership_term"`
	AllowManualExpiry      bool          `yaml:"allow_manual_expiry"`
	VotingRequiresIdentity bool          `yaml:"voting_requires_identity"`
}

type CodePolicy struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

// Default is the rule set used when no file is configured.
func Default() Policy {
	return Policy{
		MembershipCodes: CodePolicy{Enabled: true, Prefix: "MEM"},
	}
}

// Validate checks a single tenant's effective policy.
func (p Policy) Validate() error {
	if p.MembershipCodes.Enabled && !prefixPattern.MatchString(p.MembershipCodes.Prefix) {
		return fmt.Errorf("membership code prefix %q must be 2-12 upper-case letters or digits", p.MembershipCodes.Prefix)
	}
	if p.MembershipTerm < 0 {
		return fmt.Errorf("membership term must not be negative")
	}
	return nil
}

// file is the on-disk layout. Tenant entries are decoded on top of a copy of
// the defaults, so they only list what they override.
type file struct {
	Defaults yaml.Node            `yaml:"defaults"`
	Tenants  map[string]yaml.Node `yaml:"tenants"`
}

// Provider serves effective policies from a parsed policy file.
type Provider struct {
	defaults Policy
	tenants  map[id.TenantID]Policy
}

// NewStatic returns a provider that gives every tenant the same policy.
func NewStatic(p Policy) *Provider {
	return &Provider{defaults: p, tenants: map[id.TenantID]Policy{}}
}

// Load reads and validates a YAML policy file.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// Parse builds a provider from YAML.
func Parse(data []byte) (*Provider, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	defaults := Default()
	if !f.Defaults.IsZero() {
		if err := f.Defaults.Decode(&defaults); err != nil {
			return nil, fmt.Errorf("decode policy defaults: %w", err)
		}
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("policy defaults: %w", err)
	}

	p := &Provider{defaults: defaults, tenants: make(map[id.TenantID]Policy, len(f.Tenants))}
	for raw, node := range f.Tenants {
		tenantID, err := id.ParseTenantID(raw)
		if err != nil {
			return nil, fmt.Errorf("policy tenant %q: %w", raw, err)
		}
		effective := defaults
		if err := node.Decode(&effective); err != nil {
			return nil, fmt.Errorf("decode policy for tenant %s: %w", tenantID, err)
		}
		if err := effective.Validate(); err != nil {
			return nil, fmt.Errorf("policy for tenant %s: %w", tenantID, err)
		}
		p.tenants[tenantID] = effective
	}
	return p, nil
}

// ForTenant returns the tenant's effective policy.
func (p *Provider) ForTenant(_ context.Context, tenantID id.TenantID) (Policy, error) {
	if tenantID.IsZero() {
		return Policy{}, fmt.Errorf("policy lookup needs a tenant id")
	}
	if pol, ok := p.tenants[tenantID]; ok {
		return pol, nil
	}
	return p.defaults, nil
}

// Tenants lists tenants with an explicit entry, sorted.
func (p *Provider) Tenants() []id.TenantID {
	out := make([]id.TenantID, 0, len(p.tenants))
	for t := range p.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
