package storage

import (
	"strings"
	"time"
)

// Config holds the object storage settings for run archives.
// Archiving stays off until Enabled is set; the service never dials storage otherwise.
type Config struct {
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is host:port, a scheme prefix is tolerated and stripped.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives one object per run under runs/<period>/.
	Bucket string `mapstructure:"bucket" default:"reconciliation"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS handshake and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Host returns the endpoint without an http:// or https:// prefix.
func (c Config) Host() string {
	host := strings.TrimPrefix(c.Endpoint, "http://")
	return strings.TrimPrefix(host, "https://")
}

// Timeout returns the connection timeout, falling back to 30s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
