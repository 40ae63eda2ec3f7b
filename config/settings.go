package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StoreMode string

const (
	StoreModeRest StoreMode = "rest"
	StoreModeSql  StoreMode = "sql"
)

const defaultPort = "8080"

type Settings struct {
	Port         string
	Env          string
	StoreMode    StoreMode
	StoreURL     string
	StoreTimeout time.Duration
	Timezone     string
	ScanCooldown time.Duration

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddress string
	CacheTTL     time.Duration

	CorsAllowedOrigins string
	RateLimitEnabled   bool
	RateLimitMax       int64
	RateLimitWindow    time.Duration
	LogLevel           string
}

func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

// LoadSettings reads .env (if present) and then the process environment.
func LoadSettings() *Settings {
	// it might not exist in production, which is fine
	_ = godotenv.Load()

	s := &Settings{
		Port:               stringFromEnv("PORT", defaultPort),
		Env:                stringFromEnv("GO_ENV", "development"),
		StoreMode:          StoreMode(strings.ToLower(stringFromEnv("STORE_MODE", string(StoreModeRest)))),
		StoreURL:           strings.TrimRight(stringFromEnv("STORE_BASE_URL", "http://localhost:5000"), "/"),
		StoreTimeout:       time.Duration(intFromEnv("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
		Timezone:           stringFromEnv("TIMEZONE", "Asia/Kolkata"),
		ScanCooldown:       time.Duration(intFromEnv("SCAN_COOLDOWN_MS", 2000)) * time.Millisecond,
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             stringFromEnv("DB_HOST", "127.0.0.1"),
		DBPort:             stringFromEnv("DB_PORT", "3306"),
		DBName:             stringFromEnv("DB_NAME", "oil_ledger"),
		RedisAddress:       strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		CacheTTL:           time.Duration(intFromEnv("CACHE_TTL_SECONDS", 300)) * time.Second,
		CorsAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
		RateLimitEnabled:   strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true"),
		RateLimitMax:       int64(intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)),
		RateLimitWindow:    time.Duration(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:           os.Getenv("LOG_LEVEL"),
	}
	if s.StoreMode != StoreModeSql {
		s.StoreMode = StoreModeRest
	}
	return s
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
