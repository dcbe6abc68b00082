package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GinMode    string
	ServerAddr string

	// SignupPersonalTeam controls whether signup provisions a personal
	// team for the new user.
	SignupPersonalTeam bool
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Load reads configuration from the environment. A missing signing secret
// is a startup failure, never a per-request one.
func Load() (*Config, error) {
	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "kanban"),
		DBPassword: getEnv("DB_PASSWORD", "kanban"),
		DBName:     getEnv("DB_NAME", "kanban_board"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	accessTTL, err := getDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = accessTTL

	refreshTTL, err := getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL = refreshTTL

	personalTeam, err := getBool("SIGNUP_PERSONAL_TEAM", false)
	if err != nil {
		return nil, err
	}
	cfg.SignupPersonalTeam = personalTeam

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
