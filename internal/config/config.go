package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	SessionDuration time.Duration

	// Database (sqlite is the default; postgres/mysql use DatabaseURL)
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Static data files
	RegistryPath      string
	CatalogPath       string
	OfflineAssetsPath string
	OfflineAssetDir   string

	// Secrets
	PlayTokenSecret string
	CSRFSecret      string

	// Educator OAuth sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// Progress report emails (AWS SES)
	AWSRegion       string
	ReportFromEmail string
	ReportFromName  string
	AppBaseURL      string

	// Session timer
	TimerTickInterval time.Duration
	SessionIdleLimit  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),

		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./stemquest.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RegistryPath:      getEnv("GAME_REGISTRY_PATH", "./configs/registry.json"),
		CatalogPath:       getEnv("CATALOG_PATH", "./configs/catalog.json"),
		OfflineAssetsPath: getEnv("OFFLINE_ASSETS_PATH", "./configs/offline_assets.json"),
		OfflineAssetDir:   getEnv("OFFLINE_ASSET_DIR", "./static/offline"),

		PlayTokenSecret: getEnv("PLAY_TOKEN_SECRET", "dev-play-token-secret"),
		CSRFSecret:      getEnv("CSRF_SECRET", "dev-csrf-secret"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ReportFromEmail: getEnv("SES_FROM_EMAIL", ""),
		ReportFromName:  getEnv("SES_FROM_NAME", "STEMQuest"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),

		TimerTickInterval: getEnvDuration("TIMER_TICK_INTERVAL", time.Minute),
		SessionIdleLimit:  getEnvDuration("SESSION_IDLE_LIMIT", 10*time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable. Plain integers are
// treated as a number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid duration for %s: %q, using default", key, value)
	return defaultValue
}
