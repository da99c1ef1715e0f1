package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DeepSeekDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/tripwise")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.AIProvider)
	assert.Equal(t, "https://api.deepseek.com", cfg.AIBaseURL)
	assert.Equal(t, "deepseek-chat", cfg.AIModel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadConfig_ReportsEveryMissingSetting(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), `"gemini"`)
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := &Config{PostgresURL: "x", JWTSecret: "y", AIProvider: "llama", GenerateRatePerMinute: 1}
	assert.ErrorContains(t, cfg.Validate(), "unsupported AI_PROVIDER")
}
