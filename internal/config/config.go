// Package config holds the environment-driven service configuration.
// Moderation policy (hide threshold, immunity) and the posting limits are
// deliberately configuration, not constants: both have changed over the
// product's life and no call site may hardcode them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration, loaded once at startup
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	DatabaseURL string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret string

	// Moderation policy
	HideThreshold int

	// Feed
	FeedPageSize int

	// Post validation
	MaxPostChars int
	MaxPostWords int

	// Cooldown windows per action category
	PostCooldown     time.Duration
	FeedbackCooldown time.Duration

	// Feedback mail (SES)
	AWSRegion     string
	FeedbackFrom  string
	FeedbackInbox string
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8686"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "murmur.log"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		HideThreshold: getEnvInt("HIDE_THRESHOLD", 5),
		FeedPageSize:  getEnvInt("FEED_PAGE_SIZE", 15),
		MaxPostChars:  getEnvInt("MAX_POST_CHARS", 1200),
		MaxPostWords:  getEnvInt("MAX_POST_WORDS", 200),

		PostCooldown:     getEnvDuration("POST_COOLDOWN", 300*time.Second),
		FeedbackCooldown: getEnvDuration("FEEDBACK_COOLDOWN", 180*time.Second),

		AWSRegion:     getEnvOrDefault("AWS_REGION", "us-east-1"),
		FeedbackFrom:  os.Getenv("FEEDBACK_FROM_EMAIL"),
		FeedbackInbox: os.Getenv("FEEDBACK_INBOX_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.HideThreshold < 1 {
		return nil, fmt.Errorf("HIDE_THRESHOLD must be at least 1, got %d", cfg.HideThreshold)
	}
	if cfg.FeedPageSize < 1 {
		return nil, fmt.Errorf("FEED_PAGE_SIZE must be at least 1, got %d", cfg.FeedPageSize)
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration returns a duration environment variable ("300s", "5m") or
// default value. Bare integers are treated as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
