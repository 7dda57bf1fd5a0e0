package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	// Fallbacks for local runs only; main warns when they are in use
	DefaultJWTSecret     = "supersecret_change_me"
	DefaultAdminPassword = "admin123"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel slog.Level

	// Persistence
	StoreBackend   string // "file" or "redis"
	DataFile       string
	RecoverCorrupt bool // move an unreadable data file aside and start from defaults
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Access gate
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration // 0 disables token expiry
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		GinMode:        getenv("GIN_MODE", "debug"),
		LogLevel:       parseLevel(getenv("LOG_LEVEL", "info")),
		StoreBackend:   strings.ToLower(getenv("STORE_BACKEND", BackendFile)),
		DataFile:       getenv("DATA_FILE", "students_data.json"),
		RecoverCorrupt: getbool("RECOVER_CORRUPT", false),
		RedisAddr:      getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		RedisDB:        getint("REDIS_DB", 0),
		RedisKeyPrefix: getenv("REDIS_KEY_PREFIX", "roster"),
		AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getenv("ADMIN_PASSWORD", DefaultAdminPassword),
		JWTSecret:      getenv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:       time.Duration(getint("TOKEN_TTL_MINUTES", 60)) * time.Minute,
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getbool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
