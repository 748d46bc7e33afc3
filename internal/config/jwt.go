// Package config provides JWT configuration functionality.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// DefaultAccessTTL is the access token lifetime.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token and session lifetime.
	DefaultRefreshTTL = 7 * 24 * time.Hour
	// DefaultIssuer is the iss claim of every token.
	DefaultIssuer = "site-sng-admin"
)

// JWTConfig holds the signing material and lifetimes of both token kinds.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	// Ephemeral lists the variables that were absent and replaced by
	// random per-process secrets.
	Ephemeral []string
}

// NewJWTConfig reads ADMIN_JWT_SECRET, ADMIN_REFRESH_SECRET and the optional
// ADMIN_ACCESS_TTL and ADMIN_REFRESH_TTL durations. A missing
// secret is replaced by a random one; tokens then die with the process.
func NewJWTConfig() (*JWTConfig, error) {
	accessTTL, err := getEnvDuration("ADMIN_ACCESS_TTL", DefaultAccessTTL)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := getEnvDuration("ADMIN_REFRESH_TTL", DefaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg := &JWTConfig{
		AccessSecret:  getEnvString("", "ADMIN_JWT_SECRET"),
		RefreshSecret: getEnvString("", "ADMIN_REFRESH_SECRET"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        DefaultIssuer,
	}

	if cfg.AccessSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.AccessSecret = secret
		cfg.Ephemeral = append(cfg.Ephemeral, "ADMIN_JWT_SECRET")
	}
	if cfg.RefreshSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.RefreshSecret = secret
		cfg.Ephemeral = append(cfg.Ephemeral, "ADMIN_REFRESH_SECRET")
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return fmt.Errorf("token secrets cannot be empty")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.RefreshTTL < c.AccessTTL {
		return fmt.Errorf("refresh lifetime %s is shorter than access lifetime %s", c.RefreshTTL, c.AccessTTL)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
