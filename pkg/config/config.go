package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	GitHub     GitHubConfig
	Session    SessionConfig
	Encryption EncryptionConfig
	Frontend   FrontendConfig
	Sync       SyncConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type SessionConfig struct {
	Secret string
}

// EncryptionConfig holds the AES key and IV used to protect stored OAuth
// tokens. The key must be 32 bytes, the IV 16 bytes.
type EncryptionConfig struct {
	Key string
	IV  string
}

type FrontendConfig struct {
	Origin string
}

type SyncConfig struct {
	// PageDelayMs is the pause between successive page requests against the
	// GitHub API.
	PageDelayMs int
	// Concurrency bounds the per-repository fan-out during a full sync.
	Concurrency int
	// RefreshIntervalHours drives the background refresh worker. 0 disables it.
	RefreshIntervalHours int
	Workers              int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./octoview.db"),
		},
		GitHub: GitHubConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "default-secret-key"),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
			IV:  getEnv("IV_KEY", ""),
		},
		Frontend: FrontendConfig{
			Origin: getEnv("FRONTEND_ORIGIN", "http://localhost:4200"),
		},
		Sync: SyncConfig{
			PageDelayMs:          getEnvAsInt("SYNC_PAGE_DELAY_MS", 100),
			Concurrency:          getEnvAsInt("SYNC_CONCURRENCY", 4),
			RefreshIntervalHours: getEnvAsInt("SYNC_REFRESH_INTERVAL_HOURS", 24),
			Workers:              getEnvAsInt("SYNC_WORKERS", 1),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
