package bundler

import "strings"

// VariantConfig describes which base-image variants Dockerfiles are generated
// for and which variant each distribution family defaults to.
type VariantConfig struct {
	// DebianDefault is the variant used when a version requests plain Debian.
	DebianDefault string
	// AlpineDefault is the variant used when a version requests plain Alpine.
	AlpineDefault string
	// Variants maps variant names to the aliases published for them
	// (e.g. "bookworm" -> ["bookworm", "debian"]).
	Variants map[string][]string
}

// DefaultVariantConfig returns the variants built for each released version.
func DefaultVariantConfig() *VariantConfig {
	return &VariantConfig{
		DebianDefault: "bookworm",
		AlpineDefault: "alpine3.23",
		Variants: map[string][]string{
			"bookworm":   {"bookworm", "debian"},
			"trixie":     {"trixie"},
			"alpine3.22": {"alpine3.22"},
			"alpine3.23": {"alpine3.23", "alpine"},
		},
	}
}

// IsAlpine reports whether the named variant is Alpine-based.
func (c *VariantConfig) IsAlpine(variant string) bool {
	return strings.HasPrefix(variant, "alpine")
}
