package reconciliation

import (
	"testing"

	"forecast-recon/feature/reconciliation/match"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultParams(t *testing.T) {
	cfg := testConfig()
	p, err := cfg.DefaultParams("2026-01")
	require.NoError(t, err)
	assert.Equal(t, 80.0, p.FuzzyThreshold)
	assert.Equal(t, "1000", p.AmountTolerance.String())
	assert.Empty(t, p.Strategies)

	cfg.FuzzyEnabled = false
	p, err = cfg.DefaultParams("2026-01")
	require.NoError(t, err)
	assert.Equal(t, []string{match.NameExact}, p.Strategies)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Threshold", func(c *Config) { c.FuzzyThreshold = 101 }},
		{"Date Tolerance", func(c *Config) { c.DateToleranceDays = -1 }},
		{"Negative Amount Tolerance", func(c *Config) { c.AmountTolerance = "-5" }},
		{"Unparsable Amount Tolerance", func(c *Config) { c.AmountTolerance = "1,000" }},
		{"Scale", func(c *Config) { c.AmountScale = 6 }},
		{"Retention", func(c *Config) { c.RunRetentionDays = -30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
