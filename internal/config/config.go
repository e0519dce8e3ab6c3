package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Sync      SyncConfig      `yaml:"sync"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// StorageConfig configures the S3 bucket for lab documents. Leaving the
// bucket empty disables lab uploads.
type StorageConfig struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
}

// SyncConfig configures the background scheduler.
type SyncConfig struct {
	TickSeconds         int `yaml:"tick_seconds"`
	AutoSyncIntervalMin int `yaml:"auto_sync_interval_minutes"`
}

// TailscaleConfig enables serving over a tailnet instead of a plain
// listener.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Tick returns the scheduler polling period in seconds, defaulting to 60.
func (s SyncConfig) Tick() int {
	if s.TickSeconds <= 0 {
		return 60
	}
	return s.TickSeconds
}

// AutoSyncInterval returns the daily-sync interval in minutes, defaulting
// to 24 hours.
func (s SyncConfig) AutoSyncInterval() int {
	if s.AutoSyncIntervalMin <= 0 {
		return 24 * 60
	}
	return s.AutoSyncIntervalMin
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix WELLNESS_ and underscore-separated
// paths:
//
//	WELLNESS_SERVER_HOST, WELLNESS_SERVER_PORT,
//	WELLNESS_DB_HOST, WELLNESS_DB_PORT, WELLNESS_DB_NAME,
//	WELLNESS_DB_USER, WELLNESS_DB_PASSWORD, WELLNESS_DB_SSLMODE,
//	WELLNESS_AUTH_API_KEY, WELLNESS_S3_REGION, WELLNESS_S3_BUCKET
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WELLNESS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WELLNESS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WELLNESS_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("WELLNESS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("WELLNESS_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("WELLNESS_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("WELLNESS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("WELLNESS_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("WELLNESS_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("WELLNESS_S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("WELLNESS_S3_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Storage.Bucket != "" && c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required when storage.bucket is set")
	}
	return nil
}
