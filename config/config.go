package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Vision     VisionConfig     `yaml:"vision"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	Timezone        string  `yaml:"timezone"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. A DSN with a
// postgres scheme selects the Postgres driver; anything else is treated as
// a SQLite file path.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// VisionConfig holds the image-extraction backend configuration. Models are
// attempted in order until one returns parseable data.
type VisionConfig struct {
	APIKey                string        `yaml:"api_key"`
	BaseURL               string        `yaml:"base_url"`
	Models                []string      `yaml:"models"`
	AttemptTimeoutSeconds int           `yaml:"attempt_timeout_seconds"`
	AttemptTimeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PushConfig holds the caregiver push-message channel configuration. The
// access token and recipient live in the settings row, not here.
type PushConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DefaultModels is the ordered candidate list used when none is configured,
// newest and most capable first.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-flash-latest",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "Asia/Bangkok"
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "yamor.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Vision.APIKey == "" {
		cfg.Vision.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Vision.BaseURL == "" {
		cfg.Vision.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(cfg.Vision.Models) == 0 {
		cfg.Vision.Models = DefaultModels
	}
	if cfg.Vision.AttemptTimeoutSeconds <= 0 {
		cfg.Vision.AttemptTimeoutSeconds = 30
	}
	cfg.Vision.AttemptTimeout = time.Duration(cfg.Vision.AttemptTimeoutSeconds) * time.Second

	if cfg.Push.Endpoint == "" {
		cfg.Push.Endpoint = "https://api.line.me/v2/bot/message/push"
	}
	if cfg.Push.TimeoutSeconds <= 0 {
		cfg.Push.TimeoutSeconds = 10
	}
	cfg.Push.Timeout = time.Duration(cfg.Push.TimeoutSeconds) * time.Second

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
}
