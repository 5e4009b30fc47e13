package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Contact form destinations
	ClinicEmail string
	FromEmail   string
	FromName    string

	// CORS origin allow-list; the first entry is the fallback origin
	AllowedOrigins []string

	// Abuse mitigation
	RateLimitMax       int
	RateLimitWindow    time.Duration
	SpamScoreThreshold int

	// Outbound email providers, tried in order of configuration
	SendGridAPIKey  string
	ResendAPIKey    string
	SESEnabled      bool
	AWSRegion       string
	ProviderTimeout time.Duration

	// Optional shared rate-limit store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ClinicEmail: getEnv("CLINIC_EMAIL", "dr.islam_elsagher@gmail.com"),
		FromEmail:   getEnv("FROM_EMAIL", "website@dr-elsagher.com"),
		FromName:    getEnv("FROM_NAME", "Dr. Islam Elsagher Dental Clinic"),

		AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGINS", "https://dr-elsagher.com,https://www.dr-elsagher.com")),

		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
		SpamScoreThreshold: getEnvAsInt("SPAM_SCORE_THRESHOLD", 50),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		SESEnabled:      getEnvAsBool("SES_ENABLED", false),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// Validate reports configuration errors that must stop startup. Running
// without a single email provider credential would turn every submission
// into a 500, so that is rejected here rather than per request.
func (c *Config) Validate() error {
	if c.SendGridAPIKey == "" && c.ResendAPIKey == "" && !c.SESEnabled {
		return errors.New("config: no email provider configured (set SENDGRID_API_KEY, RESEND_API_KEY, or SES_ENABLED)")
	}
	if c.ClinicEmail == "" {
		return errors.New("config: CLINIC_EMAIL is required")
	}
	if c.FromEmail == "" {
		return errors.New("config: FROM_EMAIL is required")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("config: ALLOWED_ORIGINS must list at least one origin")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: rate limit max and window must be positive")
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
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
