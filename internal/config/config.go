package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds everything read from the environment.
type Config struct {
	Port          string
	DatabaseDSN   string
	FileStorePath string
	ModelPath     string
	WorkerCount   int
	MaxAttempts   int
	CORSOrigins   []string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseDSN:   buildDSN(),
		FileStorePath: getEnv("FILE_STORE_PATH", "./uploads"),
		ModelPath:     getEnv("ML_MODEL_PATH", "./ml_models/transaction_classifier.gob"),
		WorkerCount:   getEnvInt("JOB_WORKERS", 5),
		MaxAttempts:   getEnvInt("JOB_MAX_ATTEMPTS", 3),
		CORSOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
	}
}

func buildDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "budgeter"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// InitDB opens the Postgres connection. Error translation is enabled so
// duplicate-key inserts surface as gorm.ErrDuplicatedKey.
func InitDB(cfg *Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
