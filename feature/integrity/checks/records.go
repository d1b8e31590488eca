package checks

import (
	"fmt"
	"sort"

	"forecast-recon/feature/reconciliation/models"
)

// Violation is one broken reconciliation invariant.
type Violation struct {
	Kind   models.RecordKind `json:"kind"`
	ID     uint              `json:"id"`
	Rule   string            `json:"rule"`
	Detail string            `json:"detail"`
}

const (
	RuleStatus        = "status"
	RuleMatchEdge     = "match_edge"
	RuleExclusion     = "exclusion"
	RuleDanglingMatch = "dangling_match"
	RuleSharedEntry   = "shared_entry"
	RuleClaim         = "claim"
)

// CheckRecords verifies the consistency of orders and GL entries. orders must
// contain every order that references an entry in entries, and entries every
// entry referenced by an order in orders.
func CheckRecords(orders []models.OrderForecast, entries []models.GLEntry) []Violation {
	violations := make([]Violation, 0)
	add := func(kind models.RecordKind, id uint, rule, format string, args ...any) {
		violations = append(violations, Violation{Kind: kind, ID: id, Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	glByID := make(map[uint]models.GLEntry, len(entries))
	for _, g := range entries {
		glByID[g.ID] = g
	}
	refs := make(map[uint][]uint)

	for _, o := range orders {
		st := o.ReconciliationStatus
		if !st.Valid() {
			add(models.KindOrder, o.ID, RuleStatus, "unknown status %q", st)
			continue
		}
		if st.Resolved() != (o.GLMatchID != nil) {
			add(models.KindOrder, o.ID, RuleMatchEdge, "status %s with gl_match_id set=%t", st, o.GLMatchID != nil)
		}
		if (st == models.OrderExcluded) != o.IsExcluded {
			add(models.KindOrder, o.ID, RuleExclusion, "status %s with is_excluded=%t", st, o.IsExcluded)
		}
		if o.GLMatchID == nil {
			continue
		}
		refs[*o.GLMatchID] = append(refs[*o.GLMatchID], o.ID)

		g, ok := glByID[*o.GLMatchID]
		switch {
		case !ok:
			add(models.KindOrder, o.ID, RuleDanglingMatch, "references missing gl entry %d", *o.GLMatchID)
		case g.ReconciliationStatus != models.GLMatched:
			add(models.KindOrder, o.ID, RuleClaim, "references gl entry %d which is %s", g.ID, g.ReconciliationStatus)
		case g.IsExcluded:
			add(models.KindOrder, o.ID, RuleExclusion, "references excluded gl entry %d", g.ID)
		}
	}

	for _, g := range entries {
		if !g.ReconciliationStatus.Valid() {
			add(models.KindGL, g.ID, RuleStatus, "unknown status %q", g.ReconciliationStatus)
			continue
		}
		n := len(refs[g.ID])
		if n > 1 {
			add(models.KindGL, g.ID, RuleSharedEntry, "referenced by orders %v", refs[g.ID])
		}
		if g.ReconciliationStatus == models.GLMatched && n == 0 {
			add(models.KindGL, g.ID, RuleClaim, "matched but no order references it")
		}
		if g.IsExcluded && g.ReconciliationStatus != models.GLUnmatched {
			add(models.KindGL, g.ID, RuleExclusion, "excluded while %s", g.ReconciliationStatus)
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Kind != violations[j].Kind {
			return violations[i].Kind > violations[j].Kind
		}
		return violations[i].ID < violations[j].ID
	})
	return violations
}
