package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RedisURL        string
	AllowedOrigins  []string
	StorePolicy     string
	LogFile         string
	EventFile       string
	SubmitCooldown  time.Duration
	LockoutAttempts int
	LockoutDuration time.Duration

	OpenAIKey     string
	OpenAIBaseURL string
	PrimaryModel  string
	FallbackModel string
	AITimeout     time.Duration

	AdminEmail        string
	AdminPasswordHash string
	JWTSecret         string

	SlackToken         string
	SlackSigningSecret string
	SlackChannelID     string
	SlackSessionID     string
	SlackAdminUsers    []string

	LinearAPIKey string
	LinearTeamID string
}

// LoadConfig loads configuration from environment variables
// It first tries to load from .env file, then falls back to system environment variables
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		StorePolicy:     strings.ToLower(getEnv("STORE_POLICY", "fail-open")),
		LogFile:         getEnv("LOG_FILE", ""),
		EventFile:       getEnv("EVENT_FILE", ""),
		SubmitCooldown:  getDuration("SUBMIT_COOLDOWN", 60*time.Second),
		LockoutAttempts: getInt("LOCKOUT_ATTEMPTS", 3),
		LockoutDuration: getDuration("LOCKOUT_DURATION", 30*time.Second),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		PrimaryModel:  getEnv("AI_PRIMARY_MODEL", "gpt-4o"),
		FallbackModel: getEnv("AI_FALLBACK_MODEL", "gpt-4o-mini"),
		AITimeout:     getDuration("AI_TIMEOUT", 60*time.Second),

		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),

		SlackToken:         getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		SlackChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
		SlackSessionID:     getEnv("SLACK_SESSION_ID", "main"),
		SlackAdminUsers:    splitList(getEnv("SLACK_ADMIN_USERS", "")),

		LinearAPIKey: getEnv("LINEAR_API_KEY", ""),
		LinearTeamID: getEnv("LINEAR_TEAM_ID", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AIEnabled reports whether the AI proxy can reach a provider
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

// LinearEnabled reports whether backlogs can be pushed to Linear
func (c *Config) LinearEnabled() bool {
	return c.LinearAPIKey != "" && c.LinearTeamID != ""
}

// SlackEnabled reports whether Slack intake is configured
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackSigningSecret != ""
}

func (c *Config) Validate() error {
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.StorePolicy != "fail-open" && c.StorePolicy != "fail-closed" {
		return fmt.Errorf("STORE_POLICY must be fail-open or fail-closed, got %q", c.StorePolicy)
	}
	if c.SubmitCooldown < 0 {
		return fmt.Errorf("SUBMIT_COOLDOWN must not be negative")
	}
	if c.LockoutAttempts < 1 {
		return fmt.Errorf("LOCKOUT_ATTEMPTS must be at least 1")
	}
	if (c.SlackToken == "") != (c.SlackSigningSecret == "") {
		return fmt.Errorf("SLACK_BOT_TOKEN and SLACK_SIGNING_SECRET must be set together")
	}
	return nil
}
