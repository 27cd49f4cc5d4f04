package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Redis RedisConfig
	Draft DraftConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DraftConfig holds draft orchestration defaults
type DraftConfig struct {
	PickTimeout   time.Duration
	MaxSeats      int
	PassDirection string
	BotBehavior   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Draft: DraftConfig{
			PickTimeout:   time.Duration(getEnvAsIntOrDefault("DRAFT_PICK_TIMEOUT_SECONDS", 120)) * time.Second,
			MaxSeats:      getEnvAsIntOrDefault("DRAFT_MAX_SEATS", 8),
			PassDirection: getEnvOrDefault("DRAFT_PASS_DIRECTION", "alternating"),
			BotBehavior:   getEnvOrDefault("DRAFT_BOT_BEHAVIOR", "popular-leader"),
		},
	}

	if cfg.Draft.MaxSeats < 2 {
		return nil, fmt.Errorf("DRAFT_MAX_SEATS must be at least 2")
	}
	switch cfg.Draft.PassDirection {
	case "alternating", "left", "right":
	default:
		return nil, fmt.Errorf("DRAFT_PASS_DIRECTION must be alternating, left, or right")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
