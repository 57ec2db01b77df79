package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type string // "mongo" or "memory"
	URI  string
	Name string
}

// AuthConfig holds everything identity resolution needs.
//
// AdminKey is the shared secret that grants administrative capability
// without a token. AdminEmail optionally binds that capability to a real
// account; when unset (or the account is missing) key-based admins are
// synthetic and own nothing.
type AuthConfig struct {
	JWTSecret     string
	AdminKey      string
	AdminEmail    string
	AdminUsername string
}

// RedisConfig holds the view-dedup backing store settings. An empty Addr
// means the in-memory deduplicator is used instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Auth           *AuthConfig
	Redis          *RedisConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: "mongo",
		URI:  "mongodb://localhost:27017",
		Name: "bayou_blog",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the usual spots; silent failure is fine.
	for _, location := range []string{".env", "../../.env"} {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := DefaultDatabaseConfig()

	if dbType := os.Getenv("STORE"); dbType != "" {
		dbConfig.Type = dbType
	}
	if dbConfig.Type != "mongo" && dbConfig.Type != "memory" {
		return nil, fmt.Errorf("unsupported STORE type %q (want mongo or memory)", dbConfig.Type)
	}

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		dbConfig.URI = uri
	}
	if name := os.Getenv("MONGODB_NAME"); name != "" {
		dbConfig.Name = name
	}

	authConfig := &AuthConfig{
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminKey:      os.Getenv("ADMIN_KEY"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: getEnvOrDefault("ADMIN_USERNAME", "admin"),
	}
	if authConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	redisConfig := &RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisConfig.DB = db
		}
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Auth:           authConfig,
		Redis:          redisConfig,
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
