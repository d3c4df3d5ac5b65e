package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken    string
	BotPassword string
	HTTPAddr    string
	Database    DatabaseConfig
	Statistics  StatisticsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// StatisticsConfig holds streak and leaderboard settings
type StatisticsConfig struct {
	// Timezone defines calendar days for streaks and the reset schedule
	Timezone         string
	ResetSchedule    string
	LeaderboardLimit int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	limit, err := strconv.Atoi(getEnv("LEADERBOARD_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("LEADERBOARD_LIMIT must be a number: %w", err)
	}

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		BotPassword: os.Getenv("BOT_PASSWORD"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "lexicon"),
			User:     getEnv("DB_USER", "lexicon"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Statistics: StatisticsConfig{
			Timezone:         getEnv("STATS_TIMEZONE", "Asia/Tbilisi"),
			ResetSchedule:    getEnv("WEEKLY_RESET_SCHEDULE", "0 0 * * 0"),
			LeaderboardLimit: limit,
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.BotPassword == "" {
		return nil, fmt.Errorf("BOT_PASSWORD is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// Location returns the statistics timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Statistics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_TIMEZONE %q: %w", c.Statistics.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
