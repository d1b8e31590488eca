package lock

// Config holds configuration for the run lock.
type Config struct {
	// Driver selects the lock backend (local, redis).
	Driver string `mapstructure:"driver" default:"local"`
	// RedisAddress is the host:port of the redis server.
	RedisAddress string `mapstructure:"redis_address" default:"localhost:6379"`
	// RedisPassword is the redis password.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the redis database index.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// TTLSeconds bounds how long a crashed holder can block a period.
	// Live holders refresh at half this interval.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
	// RetryMillis is the wait between attempts to obtain a held lock.
	RetryMillis int `mapstructure:"retry_millis" default:"200"`
	// MaxRetries is the number of attempts before giving up.
	MaxRetries int `mapstructure:"max_retries" default:"50"`
}
