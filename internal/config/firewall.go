package config

import "sort"

// requiredFirewallDomains are always allowed through the container egress
// firewall regardless of project configuration. Removing any of these would
// break the agent itself (API access, npm installs, statsig flags, Sentry).
var requiredFirewallDomains = []string{
	"api.anthropic.com",
	"console.anthropic.com",
	"registry.npmjs.org",
	"sentry.io",
	"statsig.anthropic.com",
	"statsig.com",
}

// RequiredFirewallDomains returns the domains that must always be reachable
// from inside a clawker container. Callers receive a copy.
func RequiredFirewallDomains() []string {
	return append([]string(nil), requiredFirewallDomains...)
}

// FirewallConfig configures the container egress firewall.
//
// Domain resolution modes:
//   - override_domains set: the user controls the entire allowlist; add/remove
//     and IP range sources are ignored.
//   - otherwise (additive): defaults + add_domains - remove_domains.
type FirewallConfig struct {
	Enable          bool            `yaml:"enable" mapstructure:"enable"`
	AddDomains      []string        `yaml:"add_domains,omitempty" mapstructure:"add_domains"`
	RemoveDomains   []string        `yaml:"remove_domains,omitempty" mapstructure:"remove_domains"`
	OverrideDomains []string        `yaml:"override_domains,omitempty" mapstructure:"override_domains"`
	IPRangeSources  []IPRangeSource `yaml:"ip_range_sources,omitempty" mapstructure:"ip_range_sources"`
}

// IPRangeSource names a provider of IP CIDR ranges to allow. Built-in sources
// (see BuiltinIPRangeSources) only need a name; custom sources need a URL and
// a jq filter extracting CIDR strings from the response.
type IPRangeSource struct {
	Name     string `yaml:"name" mapstructure:"name"`
	URL      string `yaml:"url,omitempty" mapstructure:"url"`
	JQFilter string `yaml:"jq_filter,omitempty" mapstructure:"jq_filter"`
	Required *bool  `yaml:"required,omitempty" mapstructure:"required"`
}

// GetFirewallDomains resolves the effective allowlist from the given default
// domains. A nil receiver returns the defaults unchanged. Results are
// deduplicated and sorted so generated firewall scripts are deterministic.
func (f *FirewallConfig) GetFirewallDomains(defaults []string) []string {
	if f == nil {
		return defaults
	}

	if len(f.OverrideDomains) > 0 {
		return sortedUnique(f.OverrideDomains)
	}

	removed := make(map[string]struct{}, len(f.RemoveDomains))
	for _, d := range f.RemoveDomains {
		removed[d] = struct{}{}
	}

	seen := make(map[string]struct{}, len(defaults)+len(f.AddDomains))
	result := make([]string, 0, len(defaults)+len(f.AddDomains))
	for _, d := range append(append([]string(nil), defaults...), f.AddDomains...) {
		if _, drop := removed[d]; drop {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		result = append(result, d)
	}

	sort.Strings(result)
	return result
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
