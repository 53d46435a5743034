package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// StorageConfig holds the object-store settings. These are injected at
// startup and passed down explicitly; nothing in the storage package reads
// the environment on its own.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Config struct {
	ServerPort    string
	MongoURI      string
	CassandraHost string
	Storage       StorageConfig
	SweepInterval time.Duration
	LogFile       string
}

// Load reads the .env file when present and falls back to sensible local
// defaults for everything that is unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		CassandraHost: getEnv("CASS_DB", "127.0.0.1"),
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("STORAGE_BUCKET", "projecthub-attachments"),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		},
		SweepInterval: getEnvDuration("OVERDUE_SWEEP_INTERVAL", time.Minute),
		LogFile:       getEnv("LOG_FILE", "logs/backend.log"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
