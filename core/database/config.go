package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the MySQL host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the MySQL port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the MySQL user.
	User string `mapstructure:"user" default:"root"`
	// Password is the MySQL password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. For sqlite it is the file path or ":memory:".
	Name string `mapstructure:"name" default:"reconciliation"`
	// TimeoutSeconds is the connection, read and write timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOpenConns caps open MySQL connections. Ignored for sqlite, which uses one.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"25"`
	// MaxIdleConns caps idle MySQL connections.
	MaxIdleConns int `mapstructure:"max_idle_conns" default:"5"`
	// ConnMaxLifetimeMinutes recycles MySQL connections older than this.
	ConnMaxLifetimeMinutes int `mapstructure:"conn_max_lifetime_minutes" default:"60"`
	// LogLevel is the gorm log level (silent, error, warn, info).
	LogLevel string `mapstructure:"log_level" default:"silent"`
}
