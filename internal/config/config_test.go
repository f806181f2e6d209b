package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("SESSION_DURATION", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 10, cfg.RateLimitRequests)
	assert.False(t, cfg.TTSEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("TTS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.True(t, cfg.TTSEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestUnsetSecretsAreRandom(t *testing.T) {
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	first := Load()
	second := Load()

	for _, secret := range []string{first.CSRFSecret, first.JWTSecret} {
		assert.Len(t, secret, 64)
		assert.NotContains(t, secret, "change-me")
	}
	assert.NotEqual(t, first.CSRFSecret, first.JWTSecret)
	assert.NotEqual(t, first.JWTSecret, second.JWTSecret)
}

func TestSecretsFromEnvironment(t *testing.T) {
	t.Setenv("CSRF_SECRET", "csrf-from-env")
	t.Setenv("JWT_SECRET", "jwt-from-env")

	cfg := Load()

	assert.Equal(t, "csrf-from-env", cfg.CSRFSecret)
	assert.Equal(t, "jwt-from-env", cfg.JWTSecret)
}

func TestInvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		get  func() any
		want any
	}{
		{"int", "RATE_LIMIT_REQUESTS", "lots", func() any { return getEnvInt("RATE_LIMIT_REQUESTS", 7) }, 7},
		{"bool", "EMAIL_DEBUG", "maybe", func() any { return getEnvBool("EMAIL_DEBUG", true) }, true},
		{"duration", "JWT_TTL", "soon", func() any { return getEnvDuration("JWT_TTL", time.Minute) }, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			assert.Equal(t, tt.want, tt.get())
		})
	}
}
