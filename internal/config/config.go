package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// DataPath is the student performance table (.csv, .tsv or .xlsx).
	DataPath string
	// DataDelimiter overrides the field separator of delimited files.
	DataDelimiter rune
	// RedisURL enables the summary cache. Empty disables it.
	RedisURL        string
	SummaryCacheTTL time.Duration
	ChartWidth      int
	ChartHeight     int
	// ChartRateLimit caps chart renders per client IP per minute. Zero disables it.
	ChartRateLimit int
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "pretty"),
		DataPath:        getEnv("DATA_PATH", "student_performance.csv"),
		DataDelimiter:   parseDelimiter(getEnv("DATA_DELIMITER", "")),
		RedisURL:        getEnv("REDIS_URL", ""),
		SummaryCacheTTL: time.Duration(getEnvInt("SUMMARY_CACHE_TTL_SECONDS", 300)) * time.Second,
		ChartWidth:      getEnvInt("CHART_WIDTH", 800),
		ChartHeight:     getEnvInt("CHART_HEIGHT", 480),
		ChartRateLimit:  getEnvInt("CHART_RATE_LIMIT_PER_MINUTE", 120),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseDelimiter accepts a single character or the names "tab", "comma",
// "semicolon" and "pipe". Anything else yields 0 (pick by file extension).
func parseDelimiter(raw string) rune {
	switch strings.ToLower(raw) {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	case "comma":
		return ','
	case "semicolon":
		return ';'
	case "pipe":
		return '|'
	}
	if utf8.RuneCountInString(raw) != 1 {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return r
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
