package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string

	// Clinic backend (careofme)
	ClinicBaseURL     string
	PatientBaseURL    string
	ClinicProviderID  string
	ClinicBranchID    string
	ClinicOrg         string
	ClinicAuthHeader  string
	ClinicHTTPTimeout time.Duration
	ClinicInsecureTLS bool

	// Session storage
	UseRedisSessions bool
	RedisAddr        string
	RedisPassword    string
	SessionTTL       time.Duration

	// Default conversation language ("Arabic" or "English")
	DefaultLanguage string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		ClinicBaseURL:     getEnv("CLINIC_BASE_URL", "https://demonitcotekapitabebcom.careofme.net"),
		PatientBaseURL:    getEnv("PATIENT_BASE_URL", "http://demoecarepluapi.careofme.net"),
		ClinicProviderID:  getEnv("CLINIC_PROVIDER_ID", "5b7596f1-565f-4b5f-b1bb-8b31a9f076ea"),
		ClinicBranchID:    getEnv("CLINIC_BRANCH_ID", "23"),
		ClinicOrg:         getEnv("CLINIC_ORG", "12"),
		ClinicAuthHeader:  getEnv("CLINIC_AUTH_HEADER", "Basic QXBwdEZhcmFiaTpBcHB0RmFyYWJpMjk1"),
		ClinicHTTPTimeout: getEnvAsDuration("CLINIC_HTTP_TIMEOUT", 30*time.Second),
		ClinicInsecureTLS: getEnvAsBool("CLINIC_INSECURE_TLS", true),

		UseRedisSessions: getEnvAsBool("USE_REDIS_SESSIONS", false),
		RedisAddr:        getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "English"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnvAsSlice splits a comma-separated environment variable.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
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
