package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every tunable the server reads from the environment,
// so main wires components from one typed struct instead of scattered
// os.Getenv calls.
type Config struct {
	Environment string
	Port        string
	CORSOrigin  string

	LogLevel string
	LogFile  string

	JWTSecret []byte

	RedisHost     string
	RedisPort     string
	RedisPassword string

	RateLimitMax    int
	RateLimitWindow time.Duration

	TracingEnabled    bool
	TracingSampleRate float64
	OTLPEndpoint      string

	StoryPurgeRetention time.Duration
	StoryPurgeInterval  time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except JWT_SECRET, which callers must check themselves.
func Load() Config {
	return Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8787"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),

		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile:  os.Getenv("LOG_FILE"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 300),
		RateLimitWindow: time.Duration(getInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		TracingEnabled:    os.Getenv("TRACING_ENABLED") == "true",
		TracingSampleRate: getFloat("TRACING_SAMPLE_RATE", 1.0),
		OTLPEndpoint:      getEnv("OTLP_ENDPOINT", "localhost:4318"),

		StoryPurgeRetention: time.Duration(getInt("STORY_PURGE_RETENTION_DAYS", 30)) * 24 * time.Hour,
		StoryPurgeInterval:  time.Duration(getInt("STORY_PURGE_INTERVAL_HOURS", 6)) * time.Hour,
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
