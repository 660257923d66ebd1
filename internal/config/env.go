package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the first .env file found.
// Missing files are not an error; variables may be set system-wide.
func LoadEnv() (string, error) {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv("VOICENOTES_API_BASE_URL"); ok {
		cfg.API.BaseURL = v
	}
	if v, ok := lookupEnv("VOICENOTES_API_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VOICENOTES_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := lookupEnv("VOICENOTES_DB_DRIVER"); ok {
		cfg.Store.Driver = v
	}
	if v, ok := lookupEnv("VOICENOTES_DB_DSN"); ok {
		cfg.Store.DSN = v
	}
	resolveStoreDSN(cfg)
	if v, ok := lookupEnv("VOICENOTES_POLL_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VOICENOTES_POLL_ATTEMPTS: %w", err)
		}
		cfg.Summary.PollAttempts = n
	}
	if v, ok := lookupEnv("VOICENOTES_POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VOICENOTES_POLL_INTERVAL: %w", err)
		}
		cfg.Summary.PollInterval = d
	}
	if v, ok := lookupEnv("VOICENOTES_LOG_DEVELOPMENT"); ok {
		cfg.Log.Development = v == "1" || strings.EqualFold(v, "true")
	}
	if v, ok := lookupEnv("VOICENOTES_LISTEN_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := lookupEnv("REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := lookupEnv("MINIO_ENDPOINT"); ok {
		cfg.Archive.Endpoint = v
	}
	cfg.Archive.AccessKey = getEnvOrDefault("MINIO_ACCESS_KEY", cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = getEnvOrDefault("MINIO_SECRET_KEY", cfg.Archive.SecretKey)
	cfg.Archive.Bucket = getEnvOrDefault("MINIO_BUCKET", cfg.Archive.Bucket)
	if v, ok := lookupEnv("MINIO_USE_SSL"); ok {
		cfg.Archive.UseSSL = v == "true"
	}
	return nil
}
