package match

import (
	"forecast-recon/core/reconcile"
	"forecast-recon/feature/reconciliation/models"

	"github.com/shopspring/decimal"
)

// maxFuzzyScore keeps fuzzy scores strictly below an exact match.
const maxFuzzyScore = 0.9999

// Fuzzy pairs records that are close in date and amount and similar in description.
type Fuzzy struct {
	// Threshold is the minimum description similarity, 0 to 100.
	Threshold float64
	// DateToleranceDays bounds the distance between the GL date and the order's period start.
	DateToleranceDays int
	// AmountTolerance bounds the absolute amount difference.
	AmountTolerance decimal.Decimal
}

// NewFuzzy creates the fuzzy strategy.
func NewFuzzy(threshold float64, dateToleranceDays int, amountTolerance decimal.Decimal) *Fuzzy {
	return &Fuzzy{Threshold: threshold, DateToleranceDays: dateToleranceDays, AmountTolerance: amountTolerance}
}

func (f *Fuzzy) Name() string         { return NameFuzzy }
func (f *Fuzzy) Tier() reconcile.Tier { return reconcile.TierFuzzy }

// Candidates returns every pair within tolerance, sorted by (OrderID, GLID).
// Orders with a malformed period are skipped.
func (f *Fuzzy) Candidates(orders []models.OrderForecast, entries []models.GLEntry) []reconcile.Candidate {
	cands := make([]reconcile.Candidate, 0)
	for _, o := range orders {
		start, err := models.PeriodStart(o.AccountingPeriod)
		if err != nil {
			continue
		}
		for _, g := range entries {
			if models.DaysBetween(g.TransactionDate, start) > f.DateToleranceDays {
				continue
			}
			if g.Amount.Sub(o.Amount).Abs().GreaterThan(f.AmountTolerance) {
				continue
			}
			sim := reconcile.Similarity(o.Description, g.Description)
			if sim < f.Threshold {
				continue
			}
			cands = append(cands, reconcile.Candidate{
				OrderID: o.ID,
				GLID:    g.ID,
				Score:   Score(sim),
				Tier:    reconcile.TierFuzzy,
			})
		}
	}
	sortCandidates(cands)
	return cands
}

// Score converts a similarity percentage into a fuzzy score below 1.0.
func Score(similarity float64) float64 {
	s := similarity / 100
	if s > maxFuzzyScore {
		return maxFuzzyScore
	}
	return s
}
