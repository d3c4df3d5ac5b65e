package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{Statistics: StatisticsConfig{Timezone: "UTC"}}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Statistics.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

// setEnv sets required variables and clears optional ones for the test
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "BOT_PASSWORD", "DB_PASSWORD",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER",
		"HTTP_ADDR", "STATS_TIMEZONE", "WEEKLY_RESET_SCHEDULE", "LEADERBOARD_LIMIT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"BOT_TOKEN":    "test_token",
		"BOT_PASSWORD": "test_password",
		"DB_PASSWORD":  "test_db_password",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, "test_password", cfg.BotPassword)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "lexicon", cfg.Database.Name)
	assert.Equal(t, "lexicon", cfg.Database.User)
	assert.Equal(t, "Asia/Tbilisi", cfg.Statistics.Timezone)
	assert.Equal(t, "0 0 * * 0", cfg.Statistics.ResetSchedule)
	assert.Equal(t, 5, cfg.Statistics.LeaderboardLimit)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"BOT_TOKEN":             "test_token",
		"BOT_PASSWORD":          "test_password",
		"DB_PASSWORD":           "test_db_password",
		"HTTP_ADDR":             "127.0.0.1:9000",
		"STATS_TIMEZONE":        "UTC",
		"WEEKLY_RESET_SCHEDULE": "30 1 * * 1",
		"LEADERBOARD_LIMIT":     "10",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "UTC", cfg.Statistics.Timezone)
	assert.Equal(t, "30 1 * * 1", cfg.Statistics.ResetSchedule)
	assert.Equal(t, 10, cfg.Statistics.LeaderboardLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		vars        map[string]string
		errContains string
	}{
		{
			name:        "missing bot token",
			vars:        map[string]string{"BOT_PASSWORD": "p", "DB_PASSWORD": "p"},
			errContains: "BOT_TOKEN",
		},
		{
			name:        "missing bot password",
			vars:        map[string]string{"BOT_TOKEN": "t", "DB_PASSWORD": "p"},
			errContains: "BOT_PASSWORD",
		},
		{
			name:        "missing db password",
			vars:        map[string]string{"BOT_TOKEN": "t", "BOT_PASSWORD": "p"},
			errContains: "DB_PASSWORD",
		},
		{
			name: "bad timezone",
			vars: map[string]string{
				"BOT_TOKEN": "t", "BOT_PASSWORD": "p", "DB_PASSWORD": "p",
				"STATS_TIMEZONE": "Nowhere/Atlantis",
			},
			errContains: "STATS_TIMEZONE",
		},
		{
			name: "bad leaderboard limit",
			vars: map[string]string{
				"BOT_TOKEN": "t", "BOT_PASSWORD": "p", "DB_PASSWORD": "p",
				"LEADERBOARD_LIMIT": "five",
			},
			errContains: "LEADERBOARD_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.vars)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
