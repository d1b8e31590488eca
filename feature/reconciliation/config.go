package reconciliation

import "fmt"

// Config holds the default run parameters and matching options.
type Config struct {
	// FuzzyThreshold is the default minimum description similarity (0-100).
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" default:"80"`
	// DateToleranceDays is the default date window of the fuzzy tier.
	DateToleranceDays int `mapstructure:"date_tolerance_days" default:"7"`
	// AmountTolerance is the default absolute amount window of the fuzzy tier.
	AmountTolerance string `mapstructure:"amount_tolerance" default:"1000"`
	// FuzzyEnabled includes the fuzzy tier when a run names no strategies.
	FuzzyEnabled bool `mapstructure:"fuzzy_enabled" default:"true"`
	// AmountScale is the number of decimal places compared by the exact tier.
	AmountScale int32 `mapstructure:"amount_scale" default:"0"`
	// CodeTableTTLSeconds is how long the account mapping table is cached. Zero disables caching.
	// A cached table is reused only while the mapping table's stamp is unchanged.
	CodeTableTTLSeconds int `mapstructure:"code_table_ttl_seconds" default:"300"`
	// RunRetentionDays is the default age cutoff of the run prune.
	RunRetentionDays int `mapstructure:"run_retention_days" default:"365"`
}

// Validate checks that the configured defaults form valid run parameters.
func (c Config) Validate() error {
	p, err := c.DefaultParams("2000-01")
	if err != nil {
		return err
	}
	if err := p.check(newValidator()); err != nil {
		return fmt.Errorf("invalid reconcile defaults: %w", err)
	}
	if c.AmountScale < 0 || c.AmountScale > 4 {
		return fmt.Errorf("reconcile amount_scale must be 0-4, got %d", c.AmountScale)
	}
	if c.RunRetentionDays < 0 {
		return fmt.Errorf("reconcile run_retention_days must not be negative")
	}
	return nil
}
