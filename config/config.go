package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Fapshi   FapshiConfig
	Lygos    LygosConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// FapshiConfig holds credentials for the Fapshi payment API.
type FapshiConfig struct {
	BaseURL string
	APIUser string
	APIKey  string
}

// LygosConfig holds credentials for the Lygos payin API.
type LygosConfig struct {
	BaseURL    string
	APIKey     string
	ShopName   string
	SuccessURL string
	FailureURL string
}

// AdminConfig seeds the operator account used for manual payment verification.
type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8099"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second, // must outlive the 30s gateway initiation call
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "vuka:vuka@tcp(localhost:3306)/vuka?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "vuka",
		},
		Fapshi: FapshiConfig{
			BaseURL: env("FAPSHI_BASE_URL", "https://live.fapshi.com"),
			APIUser: os.Getenv("FAPSHI_API_USER"),
			APIKey:  os.Getenv("FAPSHI_API_KEY"),
		},
		Lygos: LygosConfig{
			BaseURL:    env("LYGOS_BASE_URL", "https://api.lygosapp.com/v1"),
			APIKey:     os.Getenv("LYGOS_API_KEY"),
			ShopName:   env("LYGOS_SHOP_NAME", "vuka"),
			SuccessURL: os.Getenv("LYGOS_SUCCESS_URL"),
			FailureURL: os.Getenv("LYGOS_FAILURE_URL"),
		},
		Admin: AdminConfig{
			Email:    env("ADMIN_EMAIL", "admin@vuka.app"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
