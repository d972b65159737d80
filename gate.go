package tabexport

import (
	"fmt"
	"slices"
)

// PlanTier is a tenant's subscription level.
type PlanTier string

const (
	Personal       PlanTier = "personal"
	SmallBusiness  PlanTier = "small_business"
	MediumBusiness PlanTier = "medium_business"
	Enterprise     PlanTier = "enterprise"
)

// TierCapability lists the formats one tier may export.
type TierCapability struct {
	Tier    PlanTier `yaml:"tier"`
	Formats []Format `yaml:"formats"`
}

// Policy maps plan tiers to their capability sets. Tiers are listed from
// cheapest to most expensive; that order is used to pick upgrade hints.
type Policy struct {
	Tiers []TierCapability `yaml:"tiers"`
}

// DefaultPolicy returns the standard tier matrix.
func DefaultPolicy() Policy {
	return Policy{Tiers: []TierCapability{
		{Tier: Personal, Formats: []Format{CSV}},
		{Tier: SmallBusiness, Formats: []Format{CSV, Excel}},
		{Tier: MediumBusiness, Formats: []Format{CSV, Excel}},
		{Tier: Enterprise, Formats: []Format{CSV, Excel, PDF, Custom}},
	}}
}

// Validate rejects empty or duplicated tier names and format tokens that are
// not known formats.
func (p Policy) Validate() error {
	seen := make(map[PlanTier]bool, len(p.Tiers))
	for i, tc := range p.Tiers {
		if tc.Tier == "" {
			return fmt.Errorf("%w: tier %d has no name", ErrPolicy, i)
		}
		if seen[tc.Tier] {
			return fmt.Errorf("%w: tier %q listed twice", ErrPolicy, tc.Tier)
		}
		seen[tc.Tier] = true
		for _, f := range tc.Formats {
			if !slices.Contains(formats, f) {
				return fmt.Errorf("%w: tier %q grants unknown format %q", ErrPolicy, tc.Tier, f)
			}
		}
	}
	return nil
}

// Capabilities returns the formats tier may export. Unknown tiers have none.
func (p Policy) Capabilities(tier PlanTier) []Format {
	for _, tc := range p.Tiers {
		if tc.Tier == tier {
			return slices.Clone(tc.Formats)
		}
	}
	return nil
}

// Allows reports whether tier may export f.
func (p Policy) Allows(tier PlanTier, f Format) bool {
	return slices.Contains(p.Capabilities(tier), f)
}

// MinimumTier returns the cheapest tier allowed to export f.
func (p Policy) MinimumTier(f Format) (PlanTier, bool) {
	for _, tc := range p.Tiers {
		if slices.Contains(tc.Formats, f) {
			return tc.Tier, true
		}
	}
	return "", false
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed     bool
	Tier        PlanTier
	Format      Format
	MinimumTier PlanTier // set only when denied
}

// Err returns a *DeniedError for a denied decision and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Format: d.Format, Tier: d.Tier, MinimumTier: d.MinimumTier}
}

// Authorize decides whether tier may export f. A denial names the cheapest
// tier that would be allowed. If no tier allows f at all the policy is
// misconfigured and an ErrPolicy error is returned instead of a decision.
func (p Policy) Authorize(tier PlanTier, f Format) (Decision, error) {
	d := Decision{Tier: tier, Format: f}
	if p.Allows(tier, f) {
		d.Allowed = true
		return d, nil
	}
	minTier, ok := p.MinimumTier(f)
	if !ok {
		return Decision{}, fmt.Errorf("%w: no tier permits format %q", ErrPolicy, f)
	}
	d.MinimumTier = minTier
	return d, nil
}
