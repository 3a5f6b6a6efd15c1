package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration
type Config struct {
	Port          string `validate:"required"`
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	// BusinessTimezone is the IANA zone the office schedule is expressed in.
	BusinessTimezone string `validate:"required"`

	// Visit notification delivery
	EmailProvider   string `validate:"oneof=sendgrid ses stub"`
	SendGridAPIKey  string
	EmailFromName   string
	EmailFromEmail  string
	OutboxBatchSize int           `validate:"gt=0"`
	OutboxInterval  time.Duration `validate:"gt=0"`

	AWSRegion           string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Public lead form rate limiting
	LeadRateLimit  int           `validate:"gt=0"`
	LeadRateWindow time.Duration `validate:"gt=0"`

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		BusinessTimezone: getEnv("BUSINESS_TZ", "America/Argentina/Buenos_Aires"),

		EmailProvider:   strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Del Sur Propiedades"),
		EmailFromEmail:  getEnv("EMAIL_FROM_EMAIL", ""),
		OutboxBatchSize: getEnvAsInt("OUTBOX_BATCH_SIZE", 25),
		OutboxInterval:  getEnvAsDuration("OUTBOX_INTERVAL", 2*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		LeadRateLimit:  getEnvAsInt("LEAD_RATE_LIMIT", 10),
		LeadRateWindow: getEnvAsDuration("LEAD_RATE_WINDOW", time.Minute),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate checks structural constraints and that the business timezone resolves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := time.LoadLocation(c.BusinessTimezone); err != nil {
		return fmt.Errorf("config: invalid BUSINESS_TZ %q: %w", c.BusinessTimezone, err)
	}
	return nil
}

// Location resolves the configured business timezone. Validate must pass first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
