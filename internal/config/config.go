package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is read from the working directory when TASKMASTER_CONFIG is unset
const DefaultConfigFile = "taskmaster.toml"

// Config holds application configuration
type Config struct {
	ServerPort      string `toml:"server_port"`
	DatabaseType    string `toml:"database_type"`
	DatabasePath    string `toml:"database_path"`
	DatabaseURL     string `toml:"database_url"`
	RedisURL        string `toml:"redis_url"`
	StorageKey      string `toml:"storage_key"`
	LeaderboardSize int    `toml:"leaderboard_size"`
	RateLimit       int    `toml:"rate_limit"`
	Debug           bool   `toml:"debug"`
	LogFormat       string `toml:"log_format"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		DatabaseType:    "sqlite",
		DatabasePath:    "./taskmaster.db",
		StorageKey:      "taskmaster_data",
		LeaderboardSize: 10,
		RateLimit:       120,
		LogFormat:       "text",
	}
}

// Load reads configuration with sensible defaults. Values from the TOML file
// are overridden by .env entries and then by the process environment.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("TASKMASTER_CONFIG")
	required := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	if err := loadFile(cfg, path, required); err != nil {
		return nil, err
	}

	// A missing .env is normal outside development
	_ = godotenv.Load()

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a TOML file into cfg. A missing optional file is not an error.
func loadFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	cfg.ServerPort = getEnv("PORT", cfg.ServerPort)
	cfg.DatabaseType = getEnv("DATABASE_TYPE", cfg.DatabaseType)
	cfg.DatabasePath = getEnv("DB_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.StorageKey = getEnv("STORAGE_KEY", cfg.StorageKey)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.LeaderboardSize, err = getEnvInt("LEADERBOARD_SIZE", cfg.LeaderboardSize); err != nil {
		return err
	}
	if cfg.RateLimit, err = getEnvInt("RATE_LIMIT", cfg.RateLimit); err != nil {
		return err
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for redis")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.StorageKey == "" {
		return errors.New("storage key must not be empty")
	}
	if c.LeaderboardSize <= 0 {
		return errors.New("leaderboard size must be greater than zero")
	}
	if c.RateLimit <= 0 {
		return errors.New("rate limit must be greater than zero")
	}
	return nil
}

// UsesSQL reports whether the configured store is backed by database/sql
func (c *Config) UsesSQL() bool {
	switch strings.ToLower(c.DatabaseType) {
	case "redis", "memory":
		return false
	default:
		return true
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
