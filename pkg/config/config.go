package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StorageDriver    string
	StorageNamespace string
	SQLitePath       string
	PostgresConnStr  string
	MongoURI         string
	MongoDatabase    string

	SessionTTLDays    int
	NotificationLimit int

	JWTSecret               string
	JWTAccessExpiry         time.Duration
	FirebaseCredentialsPath string
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// DefaultJWTSecret is the development fallback for JWT_SECRET.
const DefaultJWTSecret = "supersecretjwtkey"

// ErrDefaultJWTSecret is returned by Validate outside development when
// JWT_SECRET is unset.
var ErrDefaultJWTSecret = errors.New("config: JWT_SECRET must be set outside development")

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StorageDriver:    getEnv("STORAGE_DRIVER", DriverSQLite),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "vaxtop"),
		SQLitePath:       getEnv("SQLITE_PATH", "vaxtop.db"),
		PostgresConnStr:  getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:         getEnv("MONGO_URI", ""),
		MongoDatabase:    getEnv("MONGO_DATABASE", "vaxtop"),

		SessionTTLDays:    getEnvInt("SESSION_TTL_DAYS", 30),
		NotificationLimit: getEnvInt("NOTIFICATION_LIMIT", 50),

		JWTSecret:               getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAccessExpiry:         getEnvDuration("JWT_ACCESS_EXPIRY", 72*time.Hour),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
}

// UsesDefaultJWTSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.UsesDefaultJWTSecret() && c.Env != "development" {
		return ErrDefaultJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt accepts zero and negative values; SESSION_TTL_DAYS=0 disables expiry.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
