package reconcile

import "sort"

// SortCandidates puts candidates into resolution order: exact before fuzzy,
// higher score first, then ascending (OrderID, GLID). The order is total, so the
// result does not depend on the input order.
func SortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		return candidateLess(cands[i], cands[j])
	})
}

func candidateLess(a, b Candidate) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.OrderID != b.OrderID {
		return a.OrderID < b.OrderID
	}
	return a.GLID < b.GLID
}

// Resolve turns candidates into a 1:1 assignment with a greedy single pass:
// a candidate is accepted only when neither its order nor its GL entry has been
// claimed by an earlier candidate. The input slice is not modified.
func Resolve(cands []Candidate) Plan {
	ordered := make([]Candidate, len(cands))
	copy(ordered, cands)
	SortCandidates(ordered)

	plan := Plan{
		Assignments: make([]Assignment, 0),
		Considered:  len(ordered),
	}
	claimedOrders := make(map[uint]struct{}, len(ordered))
	claimedGL := make(map[uint]struct{}, len(ordered))

	for _, c := range ordered {
		if _, taken := claimedOrders[c.OrderID]; taken {
			plan.Skipped++
			continue
		}
		if _, taken := claimedGL[c.GLID]; taken {
			plan.Skipped++
			continue
		}
		claimedOrders[c.OrderID] = struct{}{}
		claimedGL[c.GLID] = struct{}{}
		plan.Assignments = append(plan.Assignments, Assignment{Candidate: c})
	}

	return plan
}
