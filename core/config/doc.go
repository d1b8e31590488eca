// Package config provides configuration management for the reconciliation service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each sub-configuration as `default`
// struct tags and are registered by reflection.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials for the run archive
//   - Log: Logging level and format
//   - Lock: Per-period run lock driver (local or redis)
//   - Reconcile: Default run parameters and matching options
//
// LoadConfig validates the result (drivers, archive bucket, reconcile defaults)
// and reports every problem in one error.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.FuzzyThreshold)
package config
