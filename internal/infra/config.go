package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	PostgresURL string
	RedisURL    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AIProvider string
	AIAPIKey   string
	AIBaseURL  string
	AIModel    string

	// OpenAIAPIKey powers speech transcription regardless of AIProvider.
	OpenAIAPIKey string

	AmapKey string

	// PublicBaseURL is where shared itineraries are opened; used for PDF QR codes.
	PublicBaseURL string
	// PDFFontPath is a TrueType font with CJK glyphs for PDF export.
	PDFFontPath string
	CORSOrigins []string

	GenerateRatePerMinute int
	GenerateBurst         int
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	provider := strings.ToLower(getEnvWithDefault("AI_PROVIDER", "deepseek"))
	cfg := &Config{
		Port:                  getEnvWithDefault("PORT", "5000"),
		Environment:           getEnvWithDefault("APP_ENV", "development"),
		PostgresURL:           os.Getenv("POSTGRES_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		AccessTokenTTL:        getDurationWithDefault("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:       getDurationWithDefault("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		AIProvider:            provider,
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		AmapKey:               os.Getenv("AMAP_API_KEY"),
		PublicBaseURL:         getEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:3000"),
		PDFFontPath:           os.Getenv("PDF_FONT_PATH"),
		CORSOrigins:           splitList(getEnvWithDefault("CORS_ORIGINS", "*")),
		GenerateRatePerMinute: getIntWithDefault("GENERATE_RATE_PER_MINUTE", 5),
		GenerateBurst:         getIntWithDefault("GENERATE_BURST", 2),
	}

	switch provider {
	case "deepseek":
		cfg.AIAPIKey = os.Getenv("DEEPSEEK_API_KEY")
		cfg.AIBaseURL = getEnvWithDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com")
		cfg.AIModel = getEnvWithDefault("DEEPSEEK_MODEL", "deepseek-chat")
	case "openai":
		cfg.AIAPIKey = os.Getenv("OPENAI_API_KEY")
		cfg.AIBaseURL = os.Getenv("OPENAI_BASE_URL")
		cfg.AIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")
	case "gemini":
		cfg.AIAPIKey = os.Getenv("GEMINI_API_KEY")
		cfg.AIModel = getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash")
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.PostgresURL == "" {
		errs = append(errs, errors.New("POSTGRES_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.AIProvider {
	case "deepseek", "openai", "gemini":
		if c.AIAPIKey == "" {
			errs = append(errs, fmt.Errorf("an API key is required for AI provider %q", c.AIProvider))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported AI_PROVIDER %q: use deepseek, openai or gemini", c.AIProvider))
	}
	if c.GenerateRatePerMinute < 1 {
		errs = append(errs, errors.New("GENERATE_RATE_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
