package model

import "github.com/rotisserie/eris"

// PlanTier is a user's subscription level. It gates which provider chain a
// scan is routed through.
type PlanTier int

const (
	TierFree PlanTier = iota
	TierBasic
	TierStandard
	TierBusiness
)

// String returns the lowercase tier name.
func (t PlanTier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierBasic:
		return "basic"
	case TierStandard:
		return "standard"
	case TierBusiness:
		return "business"
	}
	return "unknown"
}

// ParseTier converts a tier name to a PlanTier.
func ParseTier(s string) (PlanTier, error) {
	switch s {
	case "free":
		return TierFree, nil
	case "basic":
		return TierBasic, nil
	case "standard":
		return TierStandard, nil
	case "business":
		return TierBusiness, nil
	}
	return TierFree, eris.Errorf("model: unknown plan tier %q", s)
}

// AllTiers lists every tier in ascending precedence order.
func AllTiers() []PlanTier {
	return []PlanTier{TierFree, TierBasic, TierStandard, TierBusiness}
}

// Balances holds a user's point balances per paid plan bucket.
type Balances struct {
	Basic    int `json:"basic"`
	Standard int `json:"standard"`
	Business int `json:"business"`
}

// Tier returns the tier for the highest-precedence non-zero bucket.
// Precedence is business > standard > basic > free.
func (b Balances) Tier() PlanTier {
	switch {
	case b.Business > 0:
		return TierBusiness
	case b.Standard > 0:
		return TierStandard
	case b.Basic > 0:
		return TierBasic
	}
	return TierFree
}
