package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g.
// DISCIPULADO_DATABASE_DSN for database.dsn.
const EnvPrefix = "DISCIPULADO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", defaultDSN())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("congregation", "")
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.subject", "discipulado.escalations.")
	v.SetDefault("notify.breaker_failures", 3)
	v.SetDefault("notify.breaker_timeout", 30*time.Second)
	v.SetDefault("metrics.textfile", "")
}

func defaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "discipulado.db"
	}
	return filepath.Join(home, ".discipulado", "discipulado.db")
}

// Load reads configuration. configFile, when set, must exist; otherwise
// config.yaml is looked up in ".", "./configs" and "~/.discipulado" and is
// optional. A .env file in the working directory is applied first and never
// overrides variables already set in the environment.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".discipulado"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Dialect(); err != nil {
		return fmt.Errorf("config database.driver: %w", err)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config database.dsn is empty")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config log.format %q: want console or json", c.Log.Format)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config timezone: %w", err)
	}
	return nil
}
