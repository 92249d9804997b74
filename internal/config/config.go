package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig
	HTTP       HTTPConfig
	Auth       AuthConfig
	Telegram   TelegramConfig
	Restaurant RestaurantConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // listen address (e.g., ":8080")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret for driver sessions
}

// TelegramConfig contains messaging gateway settings.
type TelegramConfig struct {
	BotToken      string // Telegram bot API token
	FrontendURL   string // web-app menu URL opened from the chat
	FrontendQRURL string // web-app QR payment URL
}

// RestaurantConfig is the fixed pickup point every delivery starts from.
// Passed explicitly to the matcher and message composer instead of living as
// ambient global state.
type RestaurantConfig struct {
	Lat  float64
	Lng  float64
	Name string
}

// Load loads configuration from a .env file (if present) and environment
// variables. It fails when secrets required in production are missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but tolerates missing secrets.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "app.db"),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":8080"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			FrontendURL:   getEnv("FRONTEND_URL", ""),
			FrontendQRURL: getEnv("FRONTEND_QR_URL", ""),
		},
		Restaurant: RestaurantConfig{
			Lat:  getEnvFloat("RESTAURANT_LAT", -17.7837793056728),
			Lng:  getEnvFloat("RESTAURANT_LNG", -63.18175049023291),
			Name: getEnv("RESTAURANT_NAME", "SuperBurger Central"),
		},
	}
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvFloat retrieves an environment variable as a float with a default fallback.
// Invalid values fall back to the default rather than aborting startup.
func getEnvFloat(key string, defaultVal float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Restaurant: %s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.Restaurant.Name)
}
