package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Lock.Driver)
	assert.Equal(t, 80.0, cfg.Reconcile.FuzzyThreshold)
	assert.Equal(t, 7, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "1000", cfg.Reconcile.AmountTolerance)
	assert.True(t, cfg.Reconcile.FuzzyEnabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("RECONCILE_FUZZY_THRESHOLD", "90")
	t.Setenv("RECONCILE_FUZZY_ENABLED", "false")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("LOCK_DRIVER", "redis")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 90.0, cfg.Reconcile.FuzzyThreshold)
	assert.False(t, cfg.Reconcile.FuzzyEnabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Lock.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"Database Driver", map[string]string{"DATABASE_DRIVER": "oracle"}, "database driver"},
		{"Lock Driver", map[string]string{"LOCK_DRIVER": "etcd"}, "lock driver"},
		{"Threshold Out Of Range", map[string]string{"RECONCILE_FUZZY_THRESHOLD": "150"}, "fuzzy_threshold"},
		{"Tolerance Not A Number", map[string]string{"RECONCILE_AMOUNT_TOLERANCE": "lots"}, "amount_tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Database.Driver = "oracle"
	cfg.Lock.Driver = "etcd"
	cfg.Storage.Enabled = true
	cfg.Storage.Bucket = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database driver")
	assert.Contains(t, err.Error(), "lock driver")
	assert.Contains(t, err.Error(), "storage bucket")
}
