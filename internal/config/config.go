// Package config builds the process-wide configuration once at start.
// Every component receives the Config by reference; nothing reads the
// environment after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/validator.v2"
)

// Database holds the connection settings for the Postgres store.
type Database struct {
	Host     string `validate:"nonzero"`
	Port     string `validate:"nonzero"`
	Name     string `validate:"nonzero"`
	Username string `validate:"nonzero"`
	Password string `validate:"nonzero"`
}

// URL renders the settings as a pgx connection URL.
func (db *Database) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		db.Username,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
	)
}

// SMTP holds the settings for sending verification mail.
type SMTP struct {
	Host     string `validate:"nonzero"`
	Port     string `validate:"nonzero"`
	From     string `validate:"nonzero"`
	Username string
	Password string
}

// Log holds the logging settings. An empty Filename logs to stderr.
type Log struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Debug      bool
}

// Config is the explicit configuration object for the whole process.
type Config struct {
	Addr        string `validate:"nonzero"`
	ExternalURL string `validate:"nonzero"`
	SecretKey   string `validate:"nonzero"`
	TokenKey    string `validate:"nonzero"`
	PriceAPIURL string `validate:"nonzero"`
	Database    Database
	SMTP        SMTP
	Log         Log
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if number, err := strconv.Atoi(value); err == nil {
			return number
		}
	}

	return fallback
}

// Load reads .env if present, builds the Config from the environment,
// and validates it. Missing required settings fail Load, not some later
// request.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".env error: %w", err)
	}

	config := &Config{
		Addr:        getenv("ADDR", ":8000"),
		ExternalURL: getenv("EXTERNAL_URL", "http://localhost:8000"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		PriceAPIURL: getenv("PRICE_API_URL", "https://api.coingecko.com"),
		Database: Database{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			From:     os.Getenv("SMTP_FROM"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Log: Log{
			Filename:   os.Getenv("LOG_FILENAME"),
			MaxSize:    getenvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getenvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getenvInt("LOG_MAX_AGE", 28),
			Debug:      os.Getenv("DEBUG") == "1",
		},
	}

	if err := validator.Validate(config); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return config, nil
}
