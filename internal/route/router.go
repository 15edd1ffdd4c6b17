// Package route maps plan tiers to ordered provider chains.
package route

import (
	"github.com/rotisserie/eris"

	"github.com/truemed/scan-cli/internal/model"
)

// Table is the per-tier routing configuration. It is immutable once handed
// to a Router; tests inject alternate tables instead of mutating a global.
type Table struct {
	Free     []model.ProviderDescriptor `yaml:"free"`
	Basic    []model.ProviderDescriptor `yaml:"basic"`
	Standard []model.ProviderDescriptor `yaml:"standard"`
	Business []model.ProviderDescriptor `yaml:"business"`
}

// chain returns the configured chain for a tier. The switch is exhaustive
// over the closed PlanTier enum; an unknown value falls back to the free
// chain rather than an empty one.
func (t Table) chain(tier model.PlanTier) []model.ProviderDescriptor {
	switch tier {
	case model.TierFree:
		return t.Free
	case model.TierBasic:
		return t.Basic
	case model.TierStandard:
		return t.Standard
	case model.TierBusiness:
		return t.Business
	}
	return t.Free
}

// Router resolves a plan tier to its ordered provider chain.
type Router struct {
	table Table
}

// NewRouter validates the table and creates a Router. Every tier's chain must
// be non-empty and end with the terminal local provider.
func NewRouter(table Table) (*Router, error) {
	for _, tier := range model.AllTiers() {
		chain := table.chain(tier)
		if len(chain) == 0 {
			return nil, eris.Errorf("route: empty chain for tier %s", tier)
		}
		if !chain[len(chain)-1].Terminal() {
			return nil, eris.Errorf("route: chain for tier %s does not end with the terminal local provider", tier)
		}
	}
	return &Router{table: table}, nil
}

// RouteFor returns a copy of the ordered provider chain for the tier. The
// copy keeps callers from mutating the router's table through the slice.
func (r *Router) RouteFor(tier model.PlanTier) []model.ProviderDescriptor {
	chain := r.table.chain(tier)
	out := make([]model.ProviderDescriptor, len(chain))
	copy(out, chain)
	return out
}

// descriptor builds a chain entry with its rank filled in.
func descriptor(name string, family model.ProviderFamily, costPerCall float64, maxHour, priority int) model.ProviderDescriptor {
	return model.ProviderDescriptor{
		Name:            name,
		Family:          family,
		CostPerCallUSD:  costPerCall,
		MaxRequestsHour: maxHour,
		Priority:        priority,
	}
}

// DefaultTable returns the built-in routing table. Free and basic share the
// two-provider chain; standard adds the verification-grade OCR; business adds
// the LLM transcriber. Every chain ends with the local fallback.
func DefaultTable() Table {
	vision := descriptor("google-vision", model.FamilyVision, 0.0015, 120, 0)
	mistral := descriptor("mistral-ocr", model.FamilyVision, 0.001, 60, 1)
	claude := descriptor("claude-vision", model.FamilyLLM, 0.01, 30, 1)
	local := func(priority int) model.ProviderDescriptor {
		return descriptor("tesseract-local", model.FamilyLocal, 0, 0, priority)
	}

	return Table{
		Free:     []model.ProviderDescriptor{vision, local(1)},
		Basic:    []model.ProviderDescriptor{vision, local(1)},
		Standard: []model.ProviderDescriptor{vision, mistral, local(2)},
		Business: []model.ProviderDescriptor{vision, claude, local(2)},
	}
}
