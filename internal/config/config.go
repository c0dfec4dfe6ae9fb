// Package config loads the call filter server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shalev396/Call-Filter/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTP struct {
		Addr           string  `yaml:"addr"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"http"`

	Storage struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"storage"`

	Redis struct {
		Address    string `yaml:"address"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Timezone struct {
		Default string `yaml:"default"`
	} `yaml:"timezone"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusAddr    string `yaml:"prometheus_addr"`
	} `yaml:"monitoring"`
}

// Load reads the YAML file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))

		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureStorageDir creates the parent directory of the storage file.
func (c *Config) EnsureStorageDir() error {
	return os.MkdirAll(filepath.Dir(c.Storage.Path), 0o755)
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS) + 1
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverJSONFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverSQLite:
			c.Storage.Path = "data/callfilter.db"
		default:
			c.Storage.Path = "data/accounts.json"
		}
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusAddr == "" {
		c.Monitoring.PrometheusAddr = ":9090"
	}
}

// Validate rejects unknown storage drivers and unresolvable default timezones.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSONFile, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver %q: want %s or %s", c.Storage.Driver, DriverJSONFile, DriverSQLite)
	}
	if _, err := domain.PolicyFor(c.Timezone.Default); err != nil {
		return fmt.Errorf("timezone.default: %w", err)
	}
	return nil
}

// Policy returns the timezone policy for accounts without their own timezone.
func (c *Config) Policy() domain.TimezonePolicy {
	p, err := domain.PolicyFor(c.Timezone.Default)
	if err != nil {
		return domain.IsraelPolicy{}
	}
	return p
}

// RedisEnabled reports whether a Redis cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != "" && c.Redis.TTLSeconds > 0
}

func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
