package match

import (
	"fmt"
	"sort"

	"forecast-recon/core/reconcile"
	"forecast-recon/feature/reconciliation/models"
)

// Strategy proposes candidate pairs over one period's unresolved pool.
// Implementations are pure and return candidates sorted by (OrderID, GLID).
type Strategy interface {
	Name() string
	Tier() reconcile.Tier
	Candidates(orders []models.OrderForecast, entries []models.GLEntry) []reconcile.Candidate
}

const (
	NameExact = "exact"
	NameFuzzy = "fuzzy"
)

// Names lists the known strategies in priority order.
var Names = []string{NameExact, NameFuzzy}

// Known reports whether name is a registered strategy.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Select builds the named strategies and returns them in tier order.
// An empty list selects every strategy.
func Select(names []string, exact *Exact, fuzzy *Fuzzy) ([]Strategy, error) {
	if len(names) == 0 {
		names = Names
	}
	seen := make(map[string]bool, len(names))
	var out []Strategy
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case NameExact:
			out = append(out, exact)
		case NameFuzzy:
			out = append(out, fuzzy)
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier() < out[j].Tier() })
	return out, nil
}

func sortCandidates(cands []reconcile.Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].OrderID != cands[j].OrderID {
			return cands[i].OrderID < cands[j].OrderID
		}
		return cands[i].GLID < cands[j].GLID
	})
}
