package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Tenancy strategies. Only row-based filtering is implemented; the schema
// strategy is accepted in configuration for forward compatibility but the
// server refuses to start with it.
const (
	TenancyRow    = "row"
	TenancySchema = "schema"
)

// Revocation store backends.
const (
	RevocationPostgres = "postgres"
	RevocationRedis    = "redis"
)

const (
	defaultAddr       = ":8080"
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds all process-wide settings. It is loaded once at startup and
// passed by value; nothing reads the environment after Load returns.
type Config struct {
	Env  string
	Addr string

	DatabaseURL string

	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	TenancyStrategy string

	RevocationBackend string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	// SweepInterval enables the revoked-token sweeper when positive.
	// Zero keeps parity with the reference behavior (no sweep).
	SweepInterval time.Duration

	BootstrapEmail    string
	BootstrapPassword string

	MigrationsDir string

	CORSOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:               getDefault("GATEHOUSE_ENV", "dev"),
		Addr:              getDefault("GATEHOUSE_ADDR", defaultAddr),
		DatabaseURL:       os.Getenv("GATEHOUSE_PG_DSN"),
		SecretKey:         os.Getenv("GATEHOUSE_SECRET_KEY"),
		TenancyStrategy:   getDefault("GATEHOUSE_TENANCY_STRATEGY", TenancyRow),
		RevocationBackend: getDefault("GATEHOUSE_REVOCATION_BACKEND", RevocationPostgres),
		RedisAddr:         getDefault("GATEHOUSE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("GATEHOUSE_REDIS_PASSWORD"),
		BootstrapEmail:    os.Getenv("GATEHOUSE_BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("GATEHOUSE_BOOTSTRAP_PASSWORD"),
		MigrationsDir:     getDefault("GATEHOUSE_MIGRATIONS_DIR", "migrations"),
	}

	if cfg.SecretKey == "" {
		return Config{}, errors.New("config: GATEHOUSE_SECRET_KEY is required")
	}

	var err error
	if cfg.AccessTTL, err = durationEnv("GATEHOUSE_ACCESS_TTL", defaultAccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTTL, err = durationEnv("GATEHOUSE_REFRESH_TTL", defaultRefreshTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = durationEnv("GATEHOUSE_SWEEP_INTERVAL", 0); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("GATEHOUSE_REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	switch cfg.TenancyStrategy {
	case TenancyRow, TenancySchema:
	default:
		return Config{}, fmt.Errorf("config: unknown tenancy strategy %q", cfg.TenancyStrategy)
	}
	switch cfg.RevocationBackend {
	case RevocationPostgres, RevocationRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown revocation backend %q", cfg.RevocationBackend)
	}

	if raw := os.Getenv("GATEHOUSE_CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, nil
}

func getDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration for %s: %q", key, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: negative duration for %s", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid int for %s: %q", key, raw)
	}
	return n, nil
}
