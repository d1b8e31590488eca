package match

import (
	"forecast-recon/core/reconcile"
	"forecast-recon/feature/reconciliation/models"
)

// Exact pairs records whose period, account, normalized description and
// amount are all equal. Amounts are compared after rounding to Scale places.
type Exact struct {
	Codes *CodeTable
	Scale int32
}

// NewExact creates the exact strategy.
func NewExact(codes *CodeTable, scale int32) *Exact {
	return &Exact{Codes: codes, Scale: scale}
}

func (e *Exact) Name() string         { return NameExact }
func (e *Exact) Tier() reconcile.Tier { return reconcile.TierExact }

type exactKey struct {
	period string
	desc   string
	amount string
}

func (e *Exact) key(period, desc string, amount string) exactKey {
	return exactKey{period: period, desc: reconcile.NormalizeText(desc), amount: amount}
}

// Candidates returns every exact pair, sorted by (OrderID, GLID).
func (e *Exact) Candidates(orders []models.OrderForecast, entries []models.GLEntry) []reconcile.Candidate {
	index := make(map[exactKey][]int, len(entries))
	for i, g := range entries {
		k := e.key(g.Period, g.Description, g.Amount.Round(e.Scale).String())
		index[k] = append(index[k], i)
	}

	cands := make([]reconcile.Candidate, 0)
	for _, o := range orders {
		k := e.key(o.AccountingPeriod, o.Description, o.Amount.Round(e.Scale).String())
		for _, i := range index[k] {
			g := entries[i]
			if !e.Codes.Matches(o.AccountingItem, g) {
				continue
			}
			cands = append(cands, reconcile.Candidate{
				OrderID: o.ID,
				GLID:    g.ID,
				Score:   1.0,
				Tier:    reconcile.TierExact,
			})
		}
	}
	sortCandidates(cands)
	return cands
}
