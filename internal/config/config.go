// Package config provides environment configuration for the console.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Upstream Signalry API
	UpstreamURL     string
	UpstreamTimeout time.Duration

	// Session cookie
	CookieName   string
	CookieMaxAge time.Duration
	LoginPath    string

	// Protected path prefixes for the session gate
	ProtectedPaths []string

	// Default view parameters
	SignalLimit int

	// Demo upstream
	DemoPort        string
	DemoDBPath      string
	DemoInviteCodes []string
	DemoJWTSecret   string
	DemoTokenTTL    time.Duration

	// LLM settings (demo classifier)
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultLLM      string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
	LoginRateLimit    int

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "3000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Upstream
		UpstreamURL:     getEnv("SIGNALRY_API_URL", "http://localhost:8000"),
		UpstreamTimeout: getDurationEnv("SIGNALRY_API_TIMEOUT", 15*time.Second),

		// Session
		CookieName:   getEnv("SESSION_COOKIE_NAME", "signalry_token"),
		CookieMaxAge: getDurationEnv("SESSION_COOKIE_MAX_AGE", 30*24*time.Hour),
		LoginPath:    getEnv("LOGIN_PATH", "/login"),

		ProtectedPaths: getListEnv("PROTECTED_PATHS", []string{"/app", "/chat"}),

		SignalLimit: getIntEnv("SIGNAL_LIMIT", 50),

		// Demo upstream
		DemoPort:        getEnv("DEMO_PORT", "8000"),
		DemoDBPath:      getEnv("DEMO_DB_PATH", "data/signalry.db"),
		DemoInviteCodes: getListEnv("DEMO_INVITE_CODES", []string{"alpha-tester"}),
		DemoJWTSecret:   getEnv("DEMO_JWT_SECRET", "development-secret-change-in-production"),
		DemoTokenTTL:    getDurationEnv("DEMO_TOKEN_TTL", 30*24*time.Hour),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "anthropic"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		LoginRateLimit:    getIntEnv("LOGIN_RATE_LIMIT", 10),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
