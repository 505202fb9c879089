package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config keeps runtime settings for the service.
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"vessel_ops.db"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	WatermarkTTL   time.Duration `env:"WATERMARK_CACHE_TTL" envDefault:"768h"`
	ReportInterval time.Duration `env:"REPORT_INTERVAL" envDefault:"5h"`
	ReportTime     string        `env:"REPORT_TIME"`
	Timezone       string        `env:"TIMEZONE" envDefault:"UTC"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}

	if cfg.ReportInterval < 0 {
		return cfg, fmt.Errorf("REPORT_INTERVAL must not be negative")
	}
	if cfg.TelegramToken == "" && cfg.HTTPAddr == "" {
		return cfg, fmt.Errorf("either TELEGRAM_TOKEN or HTTP_ADDR is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// Location is where calendar months and report times are evaluated.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
