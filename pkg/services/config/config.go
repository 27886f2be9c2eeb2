package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   Server   `mapstructure:"server"`
	Logging  Logging  `mapstructure:"logging"`
	Storage  Storage  `mapstructure:"storage"`
	Dataset  Dataset  `mapstructure:"dataset"`
	Profiles Profiles `mapstructure:"profiles"`
}

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Storage struct {
	Path string `mapstructure:"path"`
}

// Dataset configures the inline dataset served without a profile registry.
// Name and Path may be empty when every dataset comes from profiles; the
// fiscal calendar and currency double as defaults for profiles that do not
// set their own.
type Dataset struct {
	Name                 string `mapstructure:"name"`
	Path                 string `mapstructure:"path"`
	FiscalYearStartMonth int    `mapstructure:"fiscal_year_start_month"`
	Currency             string `mapstructure:"currency"`
}

type Profiles struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from an optional file, applies SPEND_ prefixed
// environment overrides, and fills every unset key with its default.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("storage.path", ":memory:")
	v.SetDefault("dataset.name", "default")
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.fiscal_year_start_month", 1)
	v.SetDefault("dataset.currency", "USD")
	v.SetDefault("profiles.path", "")

	v.SetEnvPrefix("SPEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Dataset.FiscalYearStartMonth < 1 || c.Dataset.FiscalYearStartMonth > 12 {
		return fmt.Errorf("dataset.fiscal_year_start_month %d out of range", c.Dataset.FiscalYearStartMonth)
	}
	return nil
}

// Addr is the host:port the web server binds to.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
