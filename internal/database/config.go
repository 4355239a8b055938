package database

import "time"

// Config holds all settings needed to connect to the MySQL server whose
// information_schema is read.
type Config struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Database is the schema whose tables are introspected.
	Database string `yaml:"database" validate:"required"`

	// Params are extra DSN parameters, e.g. tls=skip-verify.
	Params map[string]string `yaml:"params"`

	// Pool tuning. Introspection is read-only and short-lived, so the pool
	// only needs to cover the per-table fetch concurrency.
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // dial + initial ping
	QueryTimeout   time.Duration `yaml:"query_timeout"`   // per-query deadline applied by callers
}

// DefaultConfig returns settings for a local MySQL server.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            3306,
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}
