package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultProtectedRoutes are the page routes that require an active session.
var DefaultProtectedRoutes = []string{
	"/dashboard",
	"/dashboard/add-transaction",
	"/dashboard/transHistory",
	"/dashboard/budget-setting",
	"/dashboard/monthly-summary",
}

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// JWT / sessions
	JWTSecret           string
	JWTExpirationDur    time.Duration
	ResetTokenTTL       time.Duration
	SessionCheckTimeout time.Duration
	SessionFailOpen     bool
	CookieSecure        bool
	ProtectedRoutes     []string
	LoginPath           string

	// Reports
	BudgetPolicy   string
	ReportCacheTTL time.Duration

	// Events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		JWTSecret:           getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur:    getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		ResetTokenTTL:       getDuration("RESET_TOKEN_TTL", time.Hour),
		SessionCheckTimeout: getDuration("SESSION_CHECK_TIMEOUT", 3*time.Second),
		SessionFailOpen:     getBool("SESSION_FAIL_OPEN", false),
		CookieSecure:        getBool("COOKIE_SECURE", false),
		ProtectedRoutes:     getList("PROTECTED_ROUTES", DefaultProtectedRoutes),
		LoginPath:           getEnv("LOGIN_PATH", "/auth/login"),

		BudgetPolicy:   getEnv("BUDGET_POLICY", "sum"),
		ReportCacheTTL: getDuration("REPORT_CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendsnap.events"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "spendsnap.notifications"),
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
