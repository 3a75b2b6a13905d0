package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	CORSAllowOrigin   []string
	DataForSEOLogin   string
	DataForSEOPass    string
	DataForSEOBaseURL string
	PollMaxAttempts   int
	PollInterval      time.Duration
	CacheSize         int
	LLMProvider       string
	LLMModel          string
	DatabaseURL       string
	DashboardCommand  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DataForSEOLogin:   os.Getenv("DATAFORSEO_LOGIN"),
		DataForSEOPass:    os.Getenv("DATAFORSEO_PASSWORD"),
		DataForSEOBaseURL: getEnv("DATAFORSEO_BASE_URL", "https://api.dataforseo.com/v3"),
		PollMaxAttempts:   getEnvInt("ONPAGE_POLL_MAX_ATTEMPTS", 5),
		PollInterval:      getEnvDuration("ONPAGE_POLL_INTERVAL", 10*time.Second),
		CacheSize:         getEnvInt("INSIGHTS_CACHE_SIZE", 256),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DashboardCommand:  getEnv("DASHBOARD_CMD", "./seo-backend-api"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
