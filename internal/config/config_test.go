package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.MigrationsPath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 25, cfg.DBPool.MaxOpenConns)
	assert.Equal(t, 50, cfg.AI.MaxCandidates)
	assert.Equal(t, 300, cfg.AI.DescriptionLimit)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
	assert.Contains(t, cfg.DatabaseURL, "localhost:5432/lostfound")
}

func TestFromEnv_CollectsErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("REFRESH_SECRET", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("OTP_TTL", "ten minutes")
	t.Setenv("AI_PROVIDER", "claude")

	_, err := fromEnv()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "REFRESH_SECRET", "CORS_ALLOWED_ORIGINS", "OTP_TTL", "AI_PROVIDER"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestFromEnv_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "lf")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "lostfound")
	t.Setenv("POSTGRESQL_PORT", "")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://lf:p%40ss@db:5432/lostfound?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnv_OriginsList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
