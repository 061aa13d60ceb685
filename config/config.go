package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the server. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Port         string
	DatabasePath string
	StorageRoot  string
}

func Load() Config {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	return Config{
		Port:         getenv("PORT", "3000"),
		DatabasePath: getenv("DATABASE_PATH", "database.db"),
		StorageRoot:  getenv("STORAGE_ROOT", "storage/image"),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
