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
	assert.Equal(t, "stub", cfg.EmailProvider)
	assert.Equal(t, "CareConnect System", cfg.EmailFromName)
	assert.Equal(t, 2, cfg.NotifyWorkerCount)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
	assert.False(t, cfg.UseMemoryStore)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("EMAIL_PROVIDER", " SES ")
	t.Setenv("NOTIFY_WORKER_COUNT", "8")
	t.Setenv("IDEMPOTENCY_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, "ses", cfg.EmailProvider)
	assert.Equal(t, 8, cfg.NotifyWorkerCount)
	assert.Equal(t, 30*time.Second, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("NOTIFY_WORKER_COUNT", "lots")
	t.Setenv("USE_MEMORY_STORE", "maybe")
	t.Setenv("IDEMPOTENCY_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 2, cfg.NotifyWorkerCount)
	assert.False(t, cfg.UseMemoryStore)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
}
