// Package config loads the environment variables named in spec §6
// into a typed struct, grounded on the teacher's
// internal/config/config.go (os.LookupEnv + fallback-default pattern),
// expanded to cover every variable spec §6 names plus the two the
// ambient stack needs (BUN_DSN, WS_MAX_SUBSCRIBERS).
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppName    string
	AppVersion string
	Debug      bool
	LogLevel   string
	Host       string
	Port       int

	OllamaBaseURL        string
	OllamaDefaultModel   string
	OllamaTimeout        time.Duration
	OllamaMaxConnections int

	OpenAIAPIKey  string
	OpenAIBaseURL string

	RedisURL string

	BFFBaseURL         string
	BFFCallbackEnabled bool

	// BunDSN is only consulted when the optional Postgres definition
	// store is enabled (SPEC_FULL §6).
	BunDSN string
	// WSMaxSubscribers bounds the live-stream fan-out per execution
	// (SPEC_FULL §6).
	WSMaxSubscribers int
}

func Load() Config {
	return Config{
		AppName:    getEnv("APP_NAME", "dagflow"),
		AppVersion: getEnv("APP_VERSION", "0.1.0"),
		Debug:      getBool("DEBUG", false),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Host:       getEnv("HOST", "0.0.0.0"),
		Port:       getInt("PORT", 8080),

		OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaDefaultModel:   getEnv("OLLAMA_DEFAULT_MODEL", "llama3"),
		OllamaTimeout:        getDuration("OLLAMA_TIMEOUT", 30*time.Second),
		OllamaMaxConnections: getInt("OLLAMA_MAX_CONNECTIONS", 10),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		BFFBaseURL:         getEnv("BFF_BASE_URL", ""),
		BFFCallbackEnabled: getBool("BFF_CALLBACK_ENABLED", false),

		BunDSN:           getEnv("BUN_DSN", ""),
		WSMaxSubscribers: getInt("WS_MAX_SUBSCRIBERS", 16),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if n, err2 := strconv.Atoi(v); err2 == nil {
			return time.Duration(n) * time.Second
		}
		return fallback
	}
	return d
}
