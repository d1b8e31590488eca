package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"forecast-recon/core/database"
	"forecast-recon/core/lock"
	"forecast-recon/core/logger"
	"forecast-recon/core/server"
	"forecast-recon/core/storage"
	"forecast-recon/feature/reconciliation"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration of the service, one section per package.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the run archive object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Lock holds configuration for the per-period run lock.
	Lock lock.Config `mapstructure:"lock"`
	// Reconcile holds the default run parameters and matching options.
	Reconcile reconciliation.Config `mapstructure:"reconcile"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is normal outside development
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. RECONCILE_FUZZY_THRESHOLD -> reconcile.fuzzy_threshold)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the service cannot start with. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Database.Driver) {
	case database.DriverMySQL, database.DriverSQLite, "":
	default:
		errs = append(errs, fmt.Errorf("database driver %q is not mysql or sqlite", c.Database.Driver))
	}
	switch strings.ToLower(c.Lock.Driver) {
	case lock.DriverLocal, lock.DriverRedis, "":
	default:
		errs = append(errs, fmt.Errorf("lock driver %q is not local or redis", c.Lock.Driver))
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required when the run archive is enabled"))
	}
	if err := c.Reconcile.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
