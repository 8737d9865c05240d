package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModelID)
	assert.Equal(t, 10, cfg.NotificationLogCap)
	assert.Equal(t, 5*time.Second, cfg.NotificationDisplayWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("NOTIFICATION_LOG_CAP", "25")
	t.Setenv("NOTIFICATION_DISPLAY_WINDOW", "10s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 25, cfg.NotificationLogCap)
	assert.Equal(t, 10*time.Second, cfg.NotificationDisplayWindow)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("NOTIFICATION_LOG_CAP", "many")
	t.Setenv("NOTIFICATION_DISPLAY_WINDOW", "soon")
	t.Setenv("REDIS_TLS", "yep")

	cfg := Load()
	assert.Equal(t, 10, cfg.NotificationLogCap)
	assert.Equal(t, 5*time.Second, cfg.NotificationDisplayWindow)
	assert.False(t, cfg.RedisTLS)
}
