// Package config loads settings from config.yaml, a .env file and
// DISCIPULADO_* environment variables, in increasing precedence.
package config

import (
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	// Congregation is the tenant every command runs against unless
	// --congregation overrides it.
	Congregation string        `mapstructure:"congregation"`
	Timezone     string        `mapstructure:"timezone"`
	Cache        CacheConfig   `mapstructure:"cache"`
	Notify       NotifyConfig  `mapstructure:"notify"`
	Metrics      MetricsConfig `mapstructure:"metrics"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	// RedisURL selects the shared Redis cache; empty uses an in-process one.
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type NotifyConfig struct {
	// NATSURL enables broker delivery of escalations; empty logs them.
	NATSURL         string        `mapstructure:"nats_url"`
	Subject         string        `mapstructure:"subject"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type MetricsConfig struct {
	// Textfile is a node-exporter textfile path written after each command.
	Textfile string `mapstructure:"textfile"`
}

// Dialect parses Database.Driver.
func (c *Config) Dialect() (db.Dialect, error) {
	return db.ParseDialect(c.Database.Driver)
}

// Location loads Timezone. Calendar-day arithmetic happens in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
