package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLimit and DefaultWindow apply to every request without a
	// more specific rule.
	DefaultLimit  = 120
	DefaultWindow = time.Minute

	DefaultMessage = "Слишком много запросов. Повторите позже."
	LoginMessage   = "Слишком много попыток входа. Повторите позже."
)

// EndpointConfig is the limit for one route.
type EndpointConfig struct {
	Path    string        // Exact path, or a prefix when it ends with "/"
	Method  string        // HTTP method
	Limit   int           // Maximum requests per window; 0 means unlimited
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
	Message string        // Rejection message
}

// LoadConfig reads RATE_LIMIT_* variables. basePath prefixes the built-in
// endpoint rules.
func LoadConfig(basePath string) *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", DefaultLimit),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", DefaultWindow),
		DefaultMessage:  DefaultMessage,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(basePath,
			getEnvInt("RATE_LIMIT_LOGIN_LIMIT", 8),
			getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute)),
	}
}

// DefaultEndpointConfigs returns the built-in rules: a strict login limit
// and an unlimited health check.
func DefaultEndpointConfigs(basePath string, loginLimit int, loginWindow time.Duration) []EndpointConfig {
	return []EndpointConfig{
		{Path: basePath + "/admin/auth/login", Method: http.MethodPost, Limit: loginLimit, Window: loginWindow, Message: LoginMessage},
		{Path: basePath + "/health", Method: http.MethodGet, Limit: 0},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
