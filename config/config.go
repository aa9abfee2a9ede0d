package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	API      APIConfig
	Sweep    SweepConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// APIConfig identifies the trusted callers (bot gateway, dashboard,
// scheduler) allowed to mint tokens. The secret is stored as a bcrypt hash.
type APIConfig struct {
	ClientID         string
	ClientSecretHash string
	AdminClientID    string
}

type SweepConfig struct {
	Interval time.Duration
}

func Load() *Config {
	// Local development reads a .env; absence is fine, the environment wins.
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         envStr("PORT", "8088"),
			Env:          envStr("ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envStr("DB_DSN", "bursary:bursary@tcp(localhost:3306)/bursary?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			Secret: envStr("JWT_SECRET", "change-me-in-production"),
			Expiry: envDuration("JWT_EXPIRY", time.Hour),
			Issuer: "bursary",
		},
		API: APIConfig{
			ClientID: envStr("API_CLIENT_ID", "gateway"),
			// Development placeholder; override outside development.
			ClientSecretHash: envStr("API_CLIENT_SECRET_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
			AdminClientID:    envStr("API_ADMIN_CLIENT_ID", "dashboard"),
		},
		Sweep: SweepConfig{
			Interval: envDuration("SWEEP_INTERVAL", 5*time.Minute),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
