package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReadTimeoutSeconds bounds reading a request, including the body.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
	// WriteTimeoutSeconds bounds writing a response. Runs over large periods need headroom.
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" default:"120"`
}

// AuthEnabled reports whether requests must carry the API key.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != ""
}

// ReadTimeout returns the read timeout, falling back to 30s.
func (c Config) ReadTimeout() time.Duration {
	return secondsOr(c.ReadTimeoutSeconds, 30)
}

// WriteTimeout returns the write timeout, falling back to 120s.
func (c Config) WriteTimeout() time.Duration {
	return secondsOr(c.WriteTimeoutSeconds, 120)
}

func secondsOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
