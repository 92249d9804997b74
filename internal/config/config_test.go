package config

import (
	"os"
	"testing"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	os.Unsetenv("DB_PATH")
	os.Unsetenv("HTTP_ADDRESS")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("RESTAURANT_LAT")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.HTTP.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Restaurant.Lat == 0 || cfg.Restaurant.Lng == 0 || cfg.Restaurant.Name == "" {
		t.Fatalf("restaurant pickup point should have defaults: %+v", cfg.Restaurant)
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")
	t.Setenv("DB_PATH", "test.db")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TELEGRAM_BOT_TOKEN is not set")
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "y")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secrets set: %v", err)
	}
}

func TestGetEnvFloat_InvalidFallsBack(t *testing.T) {
	t.Setenv("RESTAURANT_LAT", "not-a-number")
	if got := getEnvFloat("RESTAURANT_LAT", -17.5); got != -17.5 {
		t.Fatalf("getEnvFloat = %v, want fallback -17.5", got)
	}
}
