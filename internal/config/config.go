package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/ikusa-server/internal/constants"
	"github.com/kapu/ikusa-server/internal/util"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
	Scraper  ScraperConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// PostgresConfig is the hosted roster store. Enabled is false when no host is set.
type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type MySQLConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type ScraperConfig struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	BatchConcurrency  int
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8080"),
			AllowedOrigins:  util.SplitCommaSeparated(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 60)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "ikusa"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "require"),
		},
		MySQL: MySQLConfig{
			Host:     getEnv("MYSQL_HOST", ""),
			Port:     getEnvInt("MYSQL_PORT", 3306),
			User:     getEnv("MYSQL_USER", "root"),
			Password: getEnv("MYSQL_PASSWORD", ""),
			Database: getEnv("MYSQL_DATABASE", "ikusa"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scraper: ScraperConfig{
			Timeout:           time.Duration(getEnvInt("SCRAPER_TIMEOUT_SECONDS", int(constants.ScraperConfig.Timeout/time.Second))) * time.Second,
			UserAgent:         getEnv("SCRAPER_USER_AGENT", constants.ScraperConfig.UserAgent),
			RequestsPerSecond: getEnvFloat("SCRAPER_REQUESTS_PER_SECOND", constants.ScraperConfig.RequestsPerSec),
			Burst:             getEnvInt("SCRAPER_BURST", constants.ScraperConfig.Burst),
			BatchConcurrency:  getEnvInt("SCRAPER_BATCH_CONCURRENCY", constants.ScraperConfig.BatchConcurrency),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	cfg.Postgres.Enabled = cfg.Postgres.Host != ""
	cfg.MySQL.Enabled = cfg.MySQL.Host != ""
	cfg.Redis.Enabled = cfg.Redis.Host != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Postgres.Enabled && c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_DB is required when POSTGRES_HOST is set")
	}
	if c.MySQL.Enabled && c.MySQL.Database == "" {
		return fmt.Errorf("MYSQL_DATABASE is required when MYSQL_HOST is set")
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT_SECONDS must be positive")
	}
	if c.Scraper.BatchConcurrency <= 0 {
		return fmt.Errorf("SCRAPER_BATCH_CONCURRENCY must be positive")
	}
	if c.Scraper.RequestsPerSecond < 0 {
		return fmt.Errorf("SCRAPER_REQUESTS_PER_SECOND must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
