package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "  ")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "vessel_ops.db", cfg.DatabaseURL)
	assert.Equal(t, 768*time.Hour, cfg.WatermarkTTL)
	assert.Equal(t, 5*time.Hour, cfg.ReportInterval)
	assert.False(t, cfg.BotEnabled())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPORT_INTERVAL", "90m")
	t.Setenv("REPORT_TIME", "07:30")
	t.Setenv("TIMEZONE", "Europe/Oslo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.BotEnabled())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 90*time.Minute, cfg.ReportInterval)
	assert.Equal(t, "07:30", cfg.ReportTime)
	assert.Equal(t, "Europe/Oslo", cfg.Location().String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{name: "negative interval", env: map[string]string{"REPORT_INTERVAL": "-1h"}},
		{name: "bad duration", env: map[string]string{"WATERMARK_CACHE_TTL": "a month"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
