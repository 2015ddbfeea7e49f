// Package config provides configuration structures and loading for pagetable.
package config

import "time"

// Source drivers.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config represents the complete application configuration.
type Config struct {
	Table    TableConfig    `yaml:"table" mapstructure:"table"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// TableConfig represents pagination settings of the table.
type TableConfig struct {
	DefaultPageSize int   `yaml:"default_page_size" mapstructure:"default_page_size"`
	PageSizeOptions []int `yaml:"page_size_options" mapstructure:"page_size_options"`
}

// SourceConfig represents the remote data source settings.
type SourceConfig struct {
	Driver         string      `yaml:"driver" mapstructure:"driver"` // memory or mysql
	DelayMillis    int         `yaml:"delay_ms" mapstructure:"delay_ms"`
	MinResults     int         `yaml:"min_results" mapstructure:"min_results"`
	MaxResults     int         `yaml:"max_results" mapstructure:"max_results"`
	InitialResults int         `yaml:"initial_results" mapstructure:"initial_results"`
	SubRowDepth    int         `yaml:"sub_row_depth" mapstructure:"sub_row_depth"`
	Seed           int64       `yaml:"seed" mapstructure:"seed"` // 0 means time-based
	Table          string      `yaml:"table" mapstructure:"table"`
	Retry          RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig represents retry settings for transport failures.
type RetryConfig struct {
	MaxAttempts   int `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffMillis int `yaml:"backoff_ms" mapstructure:"backoff_ms"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	LockTimeout        int    `yaml:"lock_timeout" mapstructure:"lock_timeout"` // seconds
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			DefaultPageSize: 3,
			PageSizeOptions: []int{3, 5, 10},
		},
		Source: SourceConfig{
			Driver:         DriverMemory,
			DelayMillis:    200,
			MinResults:     1,
			MaxResults:     100,
			InitialResults: 99,
			Table:          "listing_relations",
			Retry: RetryConfig{
				MaxAttempts:   3,
				BackoffMillis: 100,
			},
		},
		Database: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			LockTimeout:        10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Delay returns the simulated round-trip delay.
func (s SourceConfig) Delay() time.Duration {
	return time.Duration(s.DelayMillis) * time.Millisecond
}

// Backoff returns the initial retry backoff.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMillis) * time.Millisecond
}

// SeedValue returns the configured random seed, or the current time when unset.
func (s SourceConfig) SeedValue() int64 {
	if s.Seed != 0 {
		return s.Seed
	}
	return time.Now().UnixNano()
}

// HasPageSize reports whether size is one of the configured page size options.
func (t TableConfig) HasPageSize(size int) bool {
	for _, opt := range t.PageSizeOptions {
		if opt == size {
			return true
		}
	}
	return false
}
