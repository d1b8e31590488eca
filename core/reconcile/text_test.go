package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Full Width Parens", "保守費用（1月分）", "保守費用(1月分)"},
		{"Ideographic Space", "保守　費用", "保守費用"},
		{"Case And Spaces", "  Help Desk\tFee ", "helpdeskfee"},
		{"Full Width Latin", "ＡＢＣ１２３", "abc123"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"Identical", "保守費用（1月分）", "保守費用 (1月分)", 100},
		{"Helpdesk Variants", "ヘルプデスク費用", "ヘルプデスク代", 80},
		{"Disjoint", "abc", "xyz", 0},
		{"One Empty", "abc", "", 0},
		{"Both Empty", "", "", 100},
		{"Case Insensitive", "Maintenance", "MAINTENANCE", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Similarity(tt.a, tt.b))
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"ヘルプデスク費用", "ヘルプデスク代"},
		{"license renewal 2026", "licence renewal"},
		{"保守", "保守費用（2月分）"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}
