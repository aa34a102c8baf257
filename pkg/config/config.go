package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Webhook  WebhookConfig
	GitHub   GitHubConfig
	Tasks    TasksConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Path string
}

type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type WebhookConfig struct {
	URL string
}

type GitHubConfig struct {
	Token string
}

type TasksConfig struct {
	DailyLimit       int
	WeeklyLimit      int
	DailyHour        int
	WeeklyDay        int // 0 = Monday .. 6 = Sunday
	WeeklyHour       int
	PushLookbackDays int
}

// Load loads configuration from a .env file and environment variables
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/trends.db"),
		},
		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", ""),
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", ""),
		},
		Webhook: WebhookConfig{
			URL: getEnv("WEBHOOK_URL", ""),
		},
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
		},
		Tasks: TasksConfig{
			DailyLimit:       getEnvAsInt("DAILY_LIMIT", 5),
			WeeklyLimit:      getEnvAsInt("WEEKLY_LIMIT", 25),
			DailyHour:        getEnvAsInt("DAILY_HOUR", 9),
			WeeklyDay:        getEnvAsInt("WEEKLY_DAY", 4),
			WeeklyHour:       getEnvAsInt("WEEKLY_HOUR", 17),
			PushLookbackDays: getEnvAsInt("PUSH_LOOKBACK_DAYS", 7),
		},
	}

	return cfg, nil
}

// ValidateTasks checks the fields required by the daily and weekly tasks.
// Serve, stats and export modes work without AI or webhook credentials.
func (c *Config) ValidateTasks() error {
	if c.AI.BaseURL == "" {
		return fmt.Errorf("missing required field AI_BASE_URL")
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("missing required field AI_API_KEY")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("missing required field AI_MODEL")
	}
	if c.Webhook.URL == "" {
		return fmt.Errorf("missing required field WEBHOOK_URL")
	}
	if c.Tasks.DailyLimit < 1 {
		return fmt.Errorf("DAILY_LIMIT must be a positive integer")
	}
	if c.Tasks.WeeklyLimit < 1 {
		return fmt.Errorf("WEEKLY_LIMIT must be a positive integer")
	}
	if c.Tasks.DailyHour < 0 || c.Tasks.DailyHour > 23 {
		return fmt.Errorf("DAILY_HOUR must be between 0 and 23")
	}
	if c.Tasks.WeeklyDay < 0 || c.Tasks.WeeklyDay > 6 {
		return fmt.Errorf("WEEKLY_DAY must be between 0 (Monday) and 6 (Sunday)")
	}
	if c.Tasks.WeeklyHour < 0 || c.Tasks.WeeklyHour > 23 {
		return fmt.Errorf("WEEKLY_HOUR must be between 0 and 23")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
