// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config carries the economic parameters and service settings read from the
// environment at boot. Values never change at runtime.
type Config struct {
	// MinimumStake is the uniform stake each player locks, smallest token unit.
	MinimumStake uint64
	// FeePercent is the house cut at settlement, 0..100.
	FeePercent uint64
	// ExpirationWindow bounds how long a game accepts stakes after creation.
	ExpirationWindow time.Duration
	// FeeRecipient receives fees, rounding remainders, and forfeited pools.
	FeeRecipient uuid.UUID
	// AdminAccounts are the accounts the gate treats as administrators.
	AdminAccounts []uuid.UUID
	// AdminPassword guards /admin/login. Empty disables password login.
	AdminPassword string

	Port string
}

// Load reads the configuration from the environment, applying defaults:
// MINIMUM_STAKE=100, FEE_PERCENT=5, EXPIRATION_WINDOW=168h. FEE_RECIPIENT is
// generated fresh when unset, which is only sensible for local runs.
func Load() (*Config, error) {
	cfg := &Config{
		MinimumStake:  getEnvUint("MINIMUM_STAKE", 100),
		FeePercent:    getEnvUint("FEE_PERCENT", 5),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Port:          getEnv("PORT", "8080"),
	}
	if cfg.FeePercent > 100 {
		return nil, fmt.Errorf("FEE_PERCENT must be 0..100, got %d", cfg.FeePercent)
	}

	window := getEnv("EXPIRATION_WINDOW", "168h")
	d, err := time.ParseDuration(window)
	if err != nil {
		return nil, fmt.Errorf("parse EXPIRATION_WINDOW %q: %w", window, err)
	}
	cfg.ExpirationWindow = d

	if s := os.Getenv("FEE_RECIPIENT"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse FEE_RECIPIENT %q: %w", s, err)
		}
		cfg.FeeRecipient = id
	} else {
		cfg.FeeRecipient = uuid.New()
	}

	if s := os.Getenv("ADMIN_ACCOUNTS"); s != "" {
		for _, part := range strings.Split(s, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("parse ADMIN_ACCOUNTS entry %q: %w", part, err)
			}
			cfg.AdminAccounts = append(cfg.AdminAccounts, id)
		}
	}

	return cfg, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvUint is a helper to parse an environment variable as unsigned integer,
// else a default value.
func getEnvUint(key string, def uint64) uint64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}
