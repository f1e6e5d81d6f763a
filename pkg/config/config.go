package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	GoogleApiKey     string
	DatabaseURL      string
	Model            string
	Port             string
	ParseMode        string
	HistoryTurns     int
	AgentTimeout     time.Duration
	OutputFile       string
	SearchMaxResults int
	WikiMaxChars     int
	WikiLang         string
	LogFormat        string
	LogLevel         string
	MCPAllowSave     bool
}

// Load reads the configuration from the environment. A missing API key is
// not an error here; it is reported on the first model call so the web page
// can still be served.
func Load() *Config {
	return &Config{
		GoogleApiKey:     getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Model:            getEnv("MODEL", "gemini-2.5-flash"),
		Port:             getEnv("PORT", "8501"),
		ParseMode:        getEnv("PARSE_MODE", "lenient"),
		HistoryTurns:     getEnvAsInt("HISTORY_TURNS", 6),
		AgentTimeout:     getEnvAsDuration("AGENT_TIMEOUT", 0),
		OutputFile:       getEnv("OUTPUT_FILE", "research_output.txt"),
		SearchMaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 5),
		WikiMaxChars:     getEnvAsInt("WIKI_MAX_CHARS", 4000),
		WikiLang:         getEnv("WIKI_LANG", "en"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MCPAllowSave:     getEnvAsBool("MCP_ALLOW_SAVE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
