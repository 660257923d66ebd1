package config

import (
	"fmt"
)

// PostgresDSNFromEnv builds a lib/pq connection string from DATABASE_URL or
// the DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME variables.
func PostgresDSNFromEnv() string {
	if url := getEnvOrDefault("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "voicenotes")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// resolveStoreDSN swaps the sqlite default path for a postgres DSN when the
// postgres driver is selected without an explicit DSN.
func resolveStoreDSN(cfg *Config) {
	if cfg.Store.Driver == "postgres" && (cfg.Store.DSN == "" || cfg.Store.DSN == DefaultDBPath) {
		cfg.Store.DSN = PostgresDSNFromEnv()
	}
}
