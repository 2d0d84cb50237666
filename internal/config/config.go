package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	PublicBaseURL string

	DatabaseDSN string

	NATSURL         string
	NATSConnTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	SessionTTL        time.Duration

	BlobDir string

	WriteTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getEnvString("PORT", "8080"),
		PublicBaseURL: getEnvString("PUBLIC_BASE_URL", "http://localhost:8080"),

		DatabaseDSN: getEnvString("DATABASE_DSN",
			"host=localhost user=postgres password=postgres dbname=empleo port=5432 sslmode=disable"),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Dev defaults mirror the throwaway admin/admin pair the first
		// version shipped with. Set ADMIN_PASSWORD_HASH in any real deploy.
		AdminUsername:     getEnvString("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnvString("ADMIN_PASSWORD", "admin"),
		AdminPasswordHash: getEnvString("ADMIN_PASSWORD_HASH", ""),
		SessionTTL:        getEnvDuration("SESSION_TTL", 12*time.Hour),

		BlobDir: getEnvString("BLOB_DIR", "data/blobs"),

		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
	}
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
