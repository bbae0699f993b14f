// Package config loads and validates application configuration from
// environment variables. Every value is read once at process start; the
// resulting structs are immutable and handed to constructors explicitly,
// so no component reaches into the environment at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // secret key for signing JWTs
	TokenDuration time.Duration // session token lifetime
	BcryptCost    int           // work factor for password hashing
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// RetentionConfig drives the background contact-submission sweeper.
type RetentionConfig struct {
	SweepInterval time.Duration // how often the sweeper wakes up
	ResolvedTTL   time.Duration // age after which resolved submissions are purged
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB        *PoolConfig
	Auth      *AuthConfig
	Server    *ServerConfig
	Retention *RetentionConfig
}

// getRequiredEnv reads a required variable, collecting an error when absent.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig creates and returns an AppConfig by reading and validating
// environment variables. All errors are collected and reported together.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database configuration
	dbUser := getRequiredEnv("DB_USER", &errors)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errors)
	dbName := getRequiredEnv("DB_NAME", &errors)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errors)
	poolSize := getOptionalEnvInt("DB_POOL_SIZE", 10, &errors)
	if poolSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid value for DB_POOL_SIZE: must be positive, got %d", poolSize))
		poolSize = 10
	}

	dbConfig := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	// Auth configuration. Tokens default to 7 days; the bcrypt work factor
	// of 12 matches what the stored password hashes were created with.
	jwtSecret := getRequiredEnv("JWT_SECRET", &errors)
	tokenDuration := getOptionalEnvDuration("JWT_EXPIRES_IN", 168*time.Hour, &errors)
	bcryptCost := getOptionalEnvInt("BCRYPT_COST", 12, &errors)
	if bcryptCost < 4 || bcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("invalid value for BCRYPT_COST: must be between 4 and 31, got %d", bcryptCost))
		bcryptCost = 12
	}

	authConfig := &AuthConfig{
		JWTSecret:     jwtSecret,
		TokenDuration: tokenDuration,
		BcryptCost:    bcryptCost,
	}

	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "5000"),
	}

	retentionConfig := &RetentionConfig{
		SweepInterval: getOptionalEnvDuration("CONTACT_SWEEP_INTERVAL", time.Hour, &errors),
		ResolvedTTL:   getOptionalEnvDuration("CONTACT_RESOLVED_TTL", 720*time.Hour, &errors),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DB:        dbConfig,
		Auth:      authConfig,
		Server:    serverConfig,
		Retention: retentionConfig,
	}, nil
}
