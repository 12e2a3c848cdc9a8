package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Blob    BlobConfig
	Payment PaymentConfig
}

type ServerConfig struct {
	Addr string
}

type DBConfig struct {
	Path string
}

type AuthConfig struct {
	SigningKey string
}

// BlobConfig points at the S3-compatible object store holding plugin jars and
// thumbnails.
type BlobConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// PaymentConfig points at the external payment provider.
type PaymentConfig struct {
	BaseURL    string
	MerchantID string
	APIKey     string
}

// Load reads configuration from environment variables, trying a .env file
// first and falling back to the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("ADDR", ":8080"),
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "craftmarket.db"),
		},
		Auth: AuthConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
		},
		Blob: BlobConfig{
			Endpoint:  getEnv("BLOB_ENDPOINT", "http://localhost:8333"),
			Region:    getEnv("BLOB_REGION", "us-east-1"),
			Bucket:    getEnv("BLOB_BUCKET", "craftmarket"),
			AccessKey: getEnv("BLOB_ACCESS_KEY", "any"),
			SecretKey: getEnv("BLOB_SECRET_KEY", "any"),
		},
		Payment: PaymentConfig{
			BaseURL:    getEnv("PAYMENT_BASE_URL", "https://sandbox.payments.example.com"),
			MerchantID: getEnv("PAYMENT_MERCHANT_ID", ""),
			APIKey:     getEnv("PAYMENT_API_KEY", ""),
		},
	}

	if cfg.Auth.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
