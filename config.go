package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/channel-board-demo/modules/api"
	"github.com/example/channel-board-demo/modules/slots"
)

// Config is the process configuration read from the environment.
type Config struct {
	HTTPPort int
	LogLevel string
	Slots    slots.Config
	Token    api.ClientTokenConfig
}

// loadConfig reads the environment. Unset or malformed values fall back to defaults.
func loadConfig() Config {
	token := api.DefaultClientTokenConfig()
	token.SecretKey = getEnv("CLIENT_TOKEN_SECRET", token.SecretKey)
	token.TTL = getEnvDuration("CLIENT_TOKEN_TTL", token.TTL)

	return Config{
		HTTPPort: getEnvInt("PORT", 3000),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Slots: slots.Config{
			Driver:        getEnv("STORAGE_DRIVER", slots.DriverSQLite),
			SQLitePath:    getEnv("DB_PATH", "channel_board.db"),
			SQLiteDebug:   getEnvBool("DB_DEBUG", false),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			PostgresURL:   getEnv("DATABASE_URL", ""),
		},
		Token: token,
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
