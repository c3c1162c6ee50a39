package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application config.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Query   QueryConfig   `koanf:"query"`
	Monitor MonitorConfig `koanf:"monitor"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type LogConfig struct {
	Path          string `koanf:"path"`
	FlushInterval string `koanf:"flush_interval"` // parsed and validated on startup
}

type QueryConfig struct {
	DefaultPerPage int `koanf:"default_per_page"`
	MaxPerPage     int `koanf:"max_per_page"`
	MaxWindowHours int `koanf:"max_window_hours"`
	MaxWindowDays  int `koanf:"max_window_days"`
}

type MonitorConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"`
}

// ParsedFlushInterval returns the validated flush interval.
func (c LogConfig) ParsedFlushInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.FlushInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid log.flush_interval %q: %w", c.FlushInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("log.flush_interval must be > 0")
	}
	return d, nil
}

// ParsedInterval returns the validated monitor interval.
func (c MonitorConfig) ParsedInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid monitor.interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("monitor.interval must be > 0")
	}
	return d, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Log.Path) == "" {
		return fmt.Errorf("log.path is required")
	}
	if _, err := c.Log.ParsedFlushInterval(); err != nil {
		return err
	}

	if c.Query.DefaultPerPage <= 0 {
		return fmt.Errorf("query.default_per_page must be > 0")
	}
	if c.Query.MaxPerPage < c.Query.DefaultPerPage {
		return fmt.Errorf("query.max_per_page must be >= query.default_per_page")
	}
	if c.Query.MaxWindowHours <= 0 {
		return fmt.Errorf("query.max_window_hours must be > 0")
	}
	if c.Query.MaxWindowDays <= 0 {
		return fmt.Errorf("query.max_window_days must be > 0")
	}

	if c.Monitor.Enabled {
		if _, err := c.Monitor.ParsedInterval(); err != nil {
			return err
		}
	}

	return nil
}

// Load parses config from file + env and validates it. An empty configPath
// runs on defaults alone.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8000,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"log.path":                "people_count_log.csv",
		"log.flush_interval":      "60s",
		"query.default_per_page":  50,
		"query.max_per_page":      1000,
		"query.max_window_hours":  744,
		"query.max_window_days":   366,
		"monitor.enabled":         true,
		"monitor.interval":        "10s",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("COUNTER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "COUNTER_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
