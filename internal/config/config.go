// Package config loads the admin API configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the complete server configuration.
type Config struct {
	Port           int
	BasePath       string   // Route prefix, "/api" by default
	AllowedOrigins []string // Origins allowed to call the API with credentials
	Production     bool     // Enables Secure cookies
	Serverless     bool     // Local filesystem is ephemeral or read-only

	Admin   AdminConfig
	JWT     *JWTConfig
	Storage StorageConfig
	Assets  AssetConfig
	Log     LogConfig
}

// AdminConfig identifies the single administrator.
type AdminConfig struct {
	Username     string
	PasswordHash string
	// PasswordFromPlaintext is set when the hash was derived at startup
	// from ADMIN_PASSWORD.
	PasswordFromPlaintext bool
}

// StorageConfig selects the collection backend.
type StorageConfig struct {
	DataDir string // Directory with the JSON collection files
	KVURL   string // Redis URL; when set, collections live in the key-value store
	// SessionStore is "memory" or "redis".
	SessionStore string
}

// UseKV reports whether the remote key-value backend is configured.
func (c StorageConfig) UseKV() bool {
	return c.KVURL != ""
}

// AssetConfig selects the upload backend.
type AssetConfig struct {
	UploadsDir    string
	PublicPrefix  string // URL prefix of locally stored uploads
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	S3Endpoint    string
	PublicBaseURL string // Overrides the bucket URL in returned asset links

	// Static credentials; the default AWS chain is used when empty.
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// UseS3 reports whether uploads go to the object store.
func (c AssetConfig) UseS3() bool {
	return c.S3Bucket != ""
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load reads the configuration from the environment. A plaintext
// ADMIN_PASSWORD is hashed once here.
func Load() (*Config, error) {
	port, err := getEnvInt("ADMIN_API_PORT", 8787)
	if err != nil {
		return nil, err
	}

	env := strings.ToLower(getEnvString("", "APP_ENV", "NODE_ENV"))

	cfg := &Config{
		Port:           port,
		BasePath:       normalizeBasePath(getEnvString("/api", "API_BASE_PATH")),
		AllowedOrigins: splitList(getEnvString("http://localhost:5173", "ADMIN_ALLOWED_ORIGIN")),
		Production:     env == "production",
		Serverless:     envSet("VERCEL", "AWS_LAMBDA_FUNCTION_NAME"),
		Admin: AdminConfig{
			Username:     getEnvString("admin", "ADMIN_USERNAME"),
			PasswordHash: getEnvString("", "ADMIN_PASSWORD_HASH"),
		},
		Storage: StorageConfig{
			DataDir:      getEnvString("src/data", "DATA_DIR"),
			KVURL:        getEnvString("", "KV_URL", "REDIS_URL"),
			SessionStore: strings.ToLower(getEnvString("memory", "SESSION_STORE")),
		},
		Assets: AssetConfig{
			UploadsDir:        getEnvString("public/uploads", "UPLOADS_DIR"),
			PublicPrefix:      "/uploads",
			S3Bucket:          getEnvString("", "S3_BUCKET"),
			S3Region:          getEnvString("", "S3_REGION", "AWS_REGION"),
			S3Prefix:          getEnvString("uploads/", "S3_PREFIX"),
			S3Endpoint:        getEnvString("", "S3_ENDPOINT"),
			PublicBaseURL:     strings.TrimRight(getEnvString("", "ASSET_PUBLIC_BASE_URL"), "/"),
			S3AccessKeyID:     getEnvString("", "S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: getEnvString("", "S3_SECRET_ACCESS_KEY"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvString("info", "LOG_LEVEL")),
			Format: strings.ToLower(getEnvString("text", "LOG_FORMAT")),
		},
	}

	if cfg.Admin.PasswordHash == "" {
		// Surrounding spaces are part of the password.
		password := os.Getenv("ADMIN_PASSWORD")
		if strings.TrimSpace(password) == "" {
			return nil, fmt.Errorf("set ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
		}
		passwordConfig, err := NewPasswordConfig()
		if err != nil {
			return nil, err
		}
		hash, err := passwordConfig.HashPassword(password)
		if err != nil {
			return nil, err
		}
		cfg.Admin.PasswordHash = hash
		cfg.Admin.PasswordFromPlaintext = true
	}

	cfg.JWT, err = NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: ADMIN_API_PORT must be a positive port number, got %d", c.Port)
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("config error: ADMIN_USERNAME cannot be empty")
	}
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("config error: admin password hash is empty")
	}
	switch c.Storage.SessionStore {
	case "memory":
	case "redis":
		if !c.Storage.UseKV() {
			return fmt.Errorf("config error: SESSION_STORE=redis requires KV_URL or REDIS_URL")
		}
	default:
		return fmt.Errorf("config error: unknown SESSION_STORE %q", c.Storage.SessionStore)
	}
	if c.Assets.UseS3() && c.Assets.S3Region == "" {
		return fmt.Errorf("config error: S3_BUCKET requires S3_REGION or AWS_REGION")
	}
	return nil
}

// AuthCookiePath is the path the refresh cookie is scoped to.
func (c *Config) AuthCookiePath() string {
	return c.BasePath + "/admin/auth"
}

func normalizeBasePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}
