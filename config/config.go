package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	AppPort              string
	GinMode              string
	DBPath               string
	JWTSecret            string
	RedisAddr            string
	RedisPass            string
	RedisDB              int
	PaymentProviderURL   string
	PaymentWebhookSecret string
	PaymentSuccessURL    string
	PaymentCancelURL     string
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() *Config {
	_ = godotenv.Load()
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:              getEnv("APP_PORT", "8080"),
		GinMode:              os.Getenv("GIN_MODE"),
		DBPath:               getEnv("DB_PATH", "homechef.db"),
		JWTSecret:            getEnv("JWT_SECRET", "homechef_dev_secret"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPass:            os.Getenv("REDIS_PASS"),
		RedisDB:              redisDB,
		PaymentProviderURL:   os.Getenv("PAYMENT_PROVIDER_URL"),
		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", "homechef_webhook_secret"),
		PaymentSuccessURL:    getEnv("PAYMENT_SUCCESS_URL", "http://localhost:5173/payment/success"),
		PaymentCancelURL:     getEnv("PAYMENT_CANCEL_URL", "http://localhost:5173/payment/cancel"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
