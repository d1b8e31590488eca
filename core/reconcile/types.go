package reconcile

// Tier ranks a candidate's strategy. Lower tiers are resolved first.
type Tier int

const (
	// TierExact is equality-based pairing. Assignments become "matched".
	TierExact Tier = iota
	// TierFuzzy is tolerance-based pairing. Assignments become "fuzzy".
	TierFuzzy
)

// String returns the tier name used in logs and run records.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Candidate is a proposed pairing of one order forecast line with one GL entry.
type Candidate struct {
	OrderID uint    `json:"order_id"`
	GLID    uint    `json:"gl_id"`
	Score   float64 `json:"score"`
	Tier    Tier    `json:"tier"`
}

// Assignment is a candidate accepted by the resolver.
type Assignment struct {
	Candidate
}

// Plan is the conflict-free outcome of resolving a candidate list.
type Plan struct {
	// Assignments in resolution order.
	Assignments []Assignment `json:"assignments"`

	// Considered is the number of candidates examined.
	Considered int `json:"considered"`

	// Skipped counts candidates dropped because one side was already claimed.
	Skipped int `json:"skipped"`
}

// ByTier splits the plan's assignments by tier.
func (p *Plan) ByTier(t Tier) []Assignment {
	out := make([]Assignment, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		if a.Tier == t {
			out = append(out, a)
		}
	}
	return out
}
