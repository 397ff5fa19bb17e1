package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds configuration of the optional trace archive
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// EngineConfig holds limits applied by the cipher service
type EngineConfig struct {
	MaxMessageBytes int
	DefaultKeyBits  int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("ARCHIVE_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "aesflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Engine: EngineConfig{
			MaxMessageBytes: getEnvInt("ENGINE_MAX_MESSAGE_BYTES", 1<<20),
			DefaultKeyBits:  getEnvInt("ENGINE_DEFAULT_KEY_BITS", 128),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// String returns a string representation of the config
func (c *Config) String() string {
	archive := "disabled"
	if c.Database.Enabled {
		archive = fmt.Sprintf("postgres://%s:***@%s:%d/%s",
			c.Database.User, c.Database.Host, c.Database.Port, c.Database.Database)
	}
	return fmt.Sprintf(`
Server: %s:%d
Archive: %s
Max message: %d bytes
Default key: %d bits`,
		c.Server.Host, c.Server.Port,
		archive,
		c.Engine.MaxMessageBytes,
		c.Engine.DefaultKeyBits,
	)
}
