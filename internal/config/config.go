package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AdminConfig holds the shared admin secret and lockout policy.
// Pin and PinHash are mutually exclusive; PinHash (bcrypt) wins when both are set.
type AdminConfig struct {
	Pin             string
	PinHash         string
	MaxAttempts     int
	LockoutDuration time.Duration
	MonitorInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "cakeshop"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", env != "production"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Admin: AdminConfig{
			Pin:             getEnv("ADMIN_PIN", ""),
			PinHash:         getEnv("ADMIN_PIN_HASH", ""),
			MaxAttempts:     getEnvAsInt("MAX_PIN_ATTEMPTS", 5),
			LockoutDuration: getEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),
			MonitorInterval: getEnvAsDuration("LOCKOUT_MONITOR_INTERVAL", 1*time.Hour),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateAdminConfig(&cfg.Admin, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateAdminConfig enforces minimum standards for the admin secret
func validateAdminConfig(admin *AdminConfig, env string) error {
	if admin.Pin == "" && admin.PinHash == "" {
		return fmt.Errorf("ADMIN_PIN or ADMIN_PIN_HASH is required")
	}

	if admin.PinHash != "" && !strings.HasPrefix(admin.PinHash, "$2") {
		return fmt.Errorf("ADMIN_PIN_HASH must be a bcrypt hash")
	}

	if admin.Pin != "" {
		minLength := 4
		if env == "production" {
			minLength = 6
		}
		if len(admin.Pin) < minLength {
			return fmt.Errorf("ADMIN_PIN must be at least %d characters in %s environment (got %d)",
				minLength, env, len(admin.Pin))
		}

		// Check against common weak PINs
		weakPins := []string{
			"0000", "1234", "1111", "123456", "000000",
			"111111", "password", "admin", "changeme",
		}
		pinLower := strings.ToLower(admin.Pin)
		for _, weak := range weakPins {
			if pinLower == weak {
				return fmt.Errorf("ADMIN_PIN cannot be a common weak value")
			}
		}
	}

	if admin.MaxAttempts < 1 {
		return fmt.Errorf("MAX_PIN_ATTEMPTS must be at least 1 (got %d)", admin.MaxAttempts)
	}
	if admin.LockoutDuration < time.Minute {
		return fmt.Errorf("LOCKOUT_DURATION must be at least 1 minute (got %s)", admin.LockoutDuration)
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{} // Default to no origins in production
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants the storefront dev server uses
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
