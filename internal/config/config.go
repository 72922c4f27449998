package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string // empty disables the auth middleware (host handles auth)
	CORSOrigins string
	TablePrefix string
	// CollectionsFile points at the YAML registry of document collections
	CollectionsFile string
	// Log file settings
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWKSURL:         getEnv("JWKS_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		CollectionsFile: getEnv("COLLECTIONS_FILE", "collections.yaml"),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     10,
		Debug:           getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
