package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Race    RaceConfig
	Storage StorageConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port          string
	Host          string
	Env           string // "development" or "production"
	AllowedOrigin string
}

// RaceConfig holds race timing and scoring configuration
type RaceConfig struct {
	MinParticipants   int
	CountdownFrom     int
	CountdownInterval time.Duration
	AutoResetDelay    time.Duration
	RetryDelay        time.Duration
	WinnerPoints      int
	LeaderboardSize   int
	StoreTimeout      time.Duration
	DefaultText       string
}

// StorageConfig selects and locates the persistent store
type StorageConfig struct {
	Driver      string // "sqlite" or "postgres"
	SQLitePath  string
	DatabaseURL string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "4000"),
			Host:          getEnv("HOST", "0.0.0.0"),
			Env:           getEnv("ENV", "development"),
			AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		},
		Race: RaceConfig{
			MinParticipants:   getEnvInt("MIN_PARTICIPANTS", 2),
			CountdownFrom:     getEnvInt("COUNTDOWN_FROM", 3),
			CountdownInterval: getEnvDuration("COUNTDOWN_INTERVAL_MS", 1000*time.Millisecond),
			AutoResetDelay:    getEnvDuration("AUTO_RESET_DELAY_MS", 5000*time.Millisecond),
			RetryDelay:        getEnvDuration("RETRY_DELAY_MS", 2000*time.Millisecond),
			WinnerPoints:      getEnvInt("WINNER_POINTS", 9),
			LeaderboardSize:   getEnvInt("LEADERBOARD_SIZE", 10),
			StoreTimeout:      getEnvDuration("STORE_TIMEOUT_MS", 3000*time.Millisecond),
			DefaultText:       getEnv("DEFAULT_RACE_TEXT", "Typing is fun!"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "sqlite"),
			SQLitePath:  getEnv("SQLITE_PATH", "./typing_race.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// StorageDSN returns the connection string for the selected storage driver
func (c *Config) StorageDSN() string {
	if c.Storage.Driver == "postgres" {
		return c.Storage.DatabaseURL
	}
	return c.Storage.SQLitePath
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration reads a millisecond count from the environment
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
