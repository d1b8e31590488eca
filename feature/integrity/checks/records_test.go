package checks

import (
	"testing"

	"forecast-recon/feature/reconciliation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(id uint) *uint { return &id }

func rules(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v.Kind) + ":" + v.Rule
	}
	return out
}

func TestCheckRecords_Consistent(t *testing.T) {
	orders := []models.OrderForecast{
		{ID: 1, ReconciliationStatus: models.OrderMatched, GLMatchID: ref(10)},
		{ID: 2, ReconciliationStatus: models.OrderFuzzy, GLMatchID: ref(11)},
		{ID: 3, ReconciliationStatus: models.OrderExcluded, IsExcluded: true},
		{ID: 4, ReconciliationStatus: models.OrderUnmatched},
	}
	entries := []models.GLEntry{
		{ID: 10, ReconciliationStatus: models.GLMatched},
		{ID: 11, ReconciliationStatus: models.GLMatched},
		{ID: 12, ReconciliationStatus: models.GLUnmatched, IsExcluded: true},
	}
	assert.Empty(t, CheckRecords(orders, entries))
}

func TestCheckRecords_Violations(t *testing.T) {
	tests := []struct {
		name    string
		orders  []models.OrderForecast
		entries []models.GLEntry
		want    []string
	}{
		{
			name:    "matched without edge",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderMatched}},
			entries: nil,
			want:    []string{"order:match_edge"},
		},
		{
			name:    "unmatched with edge",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderUnmatched, GLMatchID: ref(10)}},
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: models.GLMatched}},
			want:    []string{"order:match_edge"},
		},
		{
			name:    "flag without status",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderUnmatched, IsExcluded: true}},
			want:    []string{"order:exclusion"},
		},
		{
			name:    "unknown status",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: "pending"}},
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: "pending"}},
			want:    []string{"order:status", "gl:status"},
		},
		{
			name:   "dangling edge",
			orders: []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderMatched, GLMatchID: ref(99)}},
			want:   []string{"order:dangling_match"},
		},
		{
			name:    "edge to unclaimed entry",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderMatched, GLMatchID: ref(10)}},
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: models.GLUnmatched}},
			want:    []string{"order:claim"},
		},
		{
			name: "entry shared",
			orders: []models.OrderForecast{
				{ID: 1, ReconciliationStatus: models.OrderMatched, GLMatchID: ref(10)},
				{ID: 2, ReconciliationStatus: models.OrderFuzzy, GLMatchID: ref(10)},
			},
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: models.GLMatched}},
			want:    []string{"gl:shared_entry"},
		},
		{
			name:    "claimed entry without order",
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: models.GLMatched}},
			want:    []string{"gl:claim"},
		},
		{
			name:    "excluded matched entry",
			orders:  []models.OrderForecast{{ID: 1, ReconciliationStatus: models.OrderMatched, GLMatchID: ref(10)}},
			entries: []models.GLEntry{{ID: 10, ReconciliationStatus: models.GLMatched, IsExcluded: true}},
			want:    []string{"order:exclusion", "gl:exclusion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckRecords(tt.orders, tt.entries)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want, rules(got))
		})
	}
}
