package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/storage"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Storage     StorageConfig     `yaml:"storage"`
	Replication ReplicationConfig `yaml:"replication"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
	Log         LogConfig         `yaml:"log"`
	Rules       RulesConfig       `yaml:"rules"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type StorageConfig struct {
	Driver     string         `yaml:"driver"` // file, sqlite or postgres
	Path       string         `yaml:"path"`
	Migrations string         `yaml:"migrations"`
	Database   DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type ReplicationConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Document string        `yaml:"document"`
	Timeout  time.Duration `yaml:"timeout"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// RulesConfig tunes the point economy. Zero values keep the defaults.
type RulesConfig struct {
	ExchangeRate      float64 `yaml:"exchange_rate"`
	BaseCompleteFP    int     `yaml:"base_complete_fp"`
	BasePartialFP     int     `yaml:"base_partial_fp"`
	PrestigeRatio     float64 `yaml:"prestige_ratio"`
	LutealMultiplier  float64 `yaml:"luteal_multiplier"`
	StreakBufferHours float64 `yaml:"streak_buffer_hours"`
	GraceCap          int     `yaml:"grace_cap"`
	MaxSetScore       float64 `yaml:"max_set_score"`
	HeightM           float64 `yaml:"height_m"`
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

// StorageOptions converts the storage section for storage.Open.
func (s StorageConfig) StorageOptions() storage.Options {
	opts := storage.Options{Driver: s.Driver, Path: s.Path}
	if s.Driver == storage.DriverPostgres {
		opts.DSN = s.Database.DSN()
		opts.Migrations = s.Migrations
	}
	return opts
}

// Progression returns the economy rules with configured overrides applied.
func (r RulesConfig) Progression() progression.Rules {
	rules := progression.DefaultRules()
	rules.ExchangeRate = r.ExchangeRate
	rules.BaseCompleteFP = r.BaseCompleteFP
	rules.BasePartialFP = r.BasePartialFP
	rules.PrestigeRatio = r.PrestigeRatio
	rules.LutealMultiplier = r.LutealMultiplier
	rules.StreakBuffer = time.Duration(r.StreakBufferHours * float64(time.Hour))
	rules.GraceCap = r.GraceCap
	rules.MaxSetScore = r.MaxSetScore
	return rules
}

// Default returns the configuration used for anything the file leaves out.
func Default() *Config {
	d := progression.DefaultRules()
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{
			Driver:     storage.DriverFile,
			Path:       "data",
			Migrations: "migrations",
			Database:   DatabaseConfig{Host: "localhost", Port: 5432, Name: "lifehub", User: "lifehub"},
		},
		Replication: ReplicationConfig{Timeout: 30 * time.Second},
		Tailscale:   TailscaleConfig{Hostname: "lifehub", StateDir: "tsnet-state"},
		Log:         LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
		Rules: RulesConfig{
			ExchangeRate:      d.ExchangeRate,
			BaseCompleteFP:    d.BaseCompleteFP,
			BasePartialFP:     d.BasePartialFP,
			PrestigeRatio:     d.PrestigeRatio,
			LutealMultiplier:  d.LutealMultiplier,
			StreakBufferHours: d.StreakBuffer.Hours(),
			GraceCap:          d.GraceCap,
			MaxSetScore:       d.MaxSetScore,
			HeightM:           1.60,
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix LIFEHUB_ and underscore-separated paths:
//
//	LIFEHUB_SERVER_HOST, LIFEHUB_SERVER_PORT, LIFEHUB_AUTH_API_KEY,
//	LIFEHUB_STORAGE_DRIVER, LIFEHUB_STORAGE_PATH,
//	LIFEHUB_DB_HOST, LIFEHUB_DB_PORT, LIFEHUB_DB_NAME,
//	LIFEHUB_DB_USER, LIFEHUB_DB_PASSWORD, LIFEHUB_DB_SSLMODE,
//	LIFEHUB_REPLICATION_ENABLED, LIFEHUB_REPLICATION_URL,
//	LIFEHUB_REPLICATION_API_KEY, LIFEHUB_REPLICATION_DOCUMENT,
//	LIFEHUB_TAILSCALE_ENABLED, LIFEHUB_LOG_LEVEL, LIFEHUB_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("LIFEHUB_SERVER_HOST", &cfg.Server.Host)
	setInt("LIFEHUB_SERVER_PORT", &cfg.Server.Port)
	setString("LIFEHUB_AUTH_API_KEY", &cfg.Auth.APIKey)

	setString("LIFEHUB_STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("LIFEHUB_STORAGE_PATH", &cfg.Storage.Path)
	setString("LIFEHUB_DB_HOST", &cfg.Storage.Database.Host)
	setInt("LIFEHUB_DB_PORT", &cfg.Storage.Database.Port)
	setString("LIFEHUB_DB_NAME", &cfg.Storage.Database.Name)
	setString("LIFEHUB_DB_USER", &cfg.Storage.Database.User)
	setString("LIFEHUB_DB_PASSWORD", &cfg.Storage.Database.Password)
	setString("LIFEHUB_DB_SSLMODE", &cfg.Storage.Database.SSLMode)

	setBool("LIFEHUB_REPLICATION_ENABLED", &cfg.Replication.Enabled)
	setString("LIFEHUB_REPLICATION_URL", &cfg.Replication.URL)
	setString("LIFEHUB_REPLICATION_API_KEY", &cfg.Replication.APIKey)
	setString("LIFEHUB_REPLICATION_DOCUMENT", &cfg.Replication.Document)

	setBool("LIFEHUB_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("LIFEHUB_LOG_LEVEL", &cfg.Log.Level)
	setString("LIFEHUB_LOG_FILE", &cfg.Log.File)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}

	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver)
		}
	case storage.DriverPostgres:
		if c.Storage.Database.Host == "" {
			return fmt.Errorf("storage.database.host is required")
		}
		if c.Storage.Database.Name == "" {
			return fmt.Errorf("storage.database.name is required")
		}
		if c.Storage.Database.User == "" {
			return fmt.Errorf("storage.database.user is required")
		}
	default:
		return fmt.Errorf("storage.driver must be file, sqlite or postgres, got %q", c.Storage.Driver)
	}

	if c.Replication.Enabled {
		if !strings.HasPrefix(c.Replication.URL, "http://") && !strings.HasPrefix(c.Replication.URL, "https://") {
			return fmt.Errorf("replication.url must be an http(s) URL")
		}
		if c.Replication.APIKey == "" {
			return fmt.Errorf("replication.api_key is required when replication is enabled")
		}
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	r := c.Rules
	if r.ExchangeRate <= 0 {
		return fmt.Errorf("rules.exchange_rate must be positive")
	}
	if r.BaseCompleteFP < 0 || r.BasePartialFP < 0 {
		return fmt.Errorf("rules base FP values must not be negative")
	}
	if r.PrestigeRatio < 0 || r.LutealMultiplier < 1 {
		return fmt.Errorf("rules.prestige_ratio must be >= 0 and rules.luteal_multiplier >= 1")
	}
	if r.StreakBufferHours <= 0 {
		return fmt.Errorf("rules.streak_buffer_hours must be positive")
	}
	if r.GraceCap < 0 {
		return fmt.Errorf("rules.grace_cap must not be negative")
	}
	if r.MaxSetScore <= 0 {
		return fmt.Errorf("rules.max_set_score must be positive")
	}
	if r.HeightM <= 0 {
		return fmt.Errorf("rules.height_m must be positive")
	}
	return nil
}
