package resolver

import (
	"truthcore-hq/atlas/pkg/truth"
)

// personaTier is one precedence tier: a predicate over active personas.
// Tiers are evaluated in order and the first tier with any match wins;
// within a tier the earliest-created persona is chosen. Keeping the
// precedence as data rather than nested conditionals makes the order
// testable on its own.
type personaTier struct {
	name  string
	match func(p *truth.Persona, region string) bool
}

// personaTiers is the fixed precedence order. The final tier ("any") is a
// deliberate backward-compatibility exception to strict scope matching:
// sub-verticals configured before region scoping existed still resolve.
var personaTiers = []personaTier{
	{
		name: "local",
		match: func(p *truth.Persona, region string) bool {
			return p.Scope == truth.ScopeLocal && p.RegionCode == region
		},
	},
	{
		name: "global",
		match: func(p *truth.Persona, region string) bool {
			return p.Scope == truth.ScopeGlobal
		},
	},
	{
		name: "any",
		match: func(p *truth.Persona, region string) bool {
			return true
		},
	},
}

// selectPersona applies the precedence tiers to the active personas of a
// sub-vertical. personas must already be sorted by creation time ascending
// (the store guarantees it), which makes the within-tier tie-break a plain
// first-match. Returns nil when no active persona exists at any tier.
func selectPersona(personas []*truth.Persona, region string) (*truth.Persona, string) {
	for _, tier := range personaTiers {
		for _, p := range personas {
			if !p.Active {
				continue
			}
			if tier.match(p, region) {
				return p, tier.name
			}
		}
	}
	return nil, ""
}
