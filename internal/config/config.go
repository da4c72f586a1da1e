// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type PipelineConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`     // per-request HTTP timeout
	MaxRetries int           `yaml:"max_retries"` // transient failures only; 404 is never retried
}

type MonitorConfig struct {
	Workers         int           `yaml:"workers"`          // concurrent poll executions
	RefreshInterval time.Duration `yaml:"refresh_interval"` // watch list re-scan cadence
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type NotifyConfig struct {
	Channel       string `yaml:"channel"` // log | telegram
	TelegramToken string `yaml:"telegram_token"`
	TelegramChat  int64  `yaml:"telegram_chat"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // 16/24/32 bytes, AES-GCM for tokens at rest
}

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Notify   NotifyConfig   `yaml:"notify"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Pipeline.Timeout <= 0 {
		cfg.Pipeline.Timeout = 30 * time.Second
	}
	if cfg.Pipeline.MaxRetries <= 0 {
		cfg.Pipeline.MaxRetries = 3
	}
	if cfg.Monitor.Workers <= 0 {
		cfg.Monitor.Workers = 8
	}
	if cfg.Monitor.RefreshInterval <= 0 {
		cfg.Monitor.RefreshInterval = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8090
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Notify.Channel == "" {
		cfg.Notify.Channel = "log"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Pipeline.BaseURL == "" {
		return nil, errors.New("pipeline.base_url is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Notify.Channel == "telegram" && cfg.Notify.TelegramToken == "" {
		return nil, errors.New("notify.telegram_token is required for the telegram channel")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
