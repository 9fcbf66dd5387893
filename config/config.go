package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the checkout service.
type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string

	RedisURL string

	KafkaBrokers  []string
	CheckoutTopic string

	VNPayTmnCode    string
	VNPayHashSecret string
	VNPayBaseURL    string
	VNPayReturnURL  string

	FrontendSuccessURL string
	FrontendFailureURL string

	CartLockTTL        time.Duration
	CheckoutSessionTTL time.Duration
	PaymentTokenTTL    time.Duration
}

// Load reads configuration from the environment, with .env support for local
// development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		KafkaBrokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		CheckoutTopic: getEnv("CHECKOUT_TOPIC", "checkout-topic"),

		VNPayTmnCode:    os.Getenv("VNPAY_TMN_CODE"),
		VNPayHashSecret: os.Getenv("VNPAY_HASH_SECRET"),
		VNPayBaseURL:    getEnv("VNPAY_BASE_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		VNPayReturnURL:  os.Getenv("VNPAY_RETURN_URL"),

		FrontendSuccessURL: getEnv("FRONTEND_SUCCESS_URL", "http://localhost:3000/payment/success"),
		FrontendFailureURL: getEnv("FRONTEND_FAILURE_URL", "http://localhost:3000/payment/failure"),

		CartLockTTL:        getDuration("CART_LOCK_TTL", 15*time.Minute),
		CheckoutSessionTTL: getDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		PaymentTokenTTL:    getDuration("PAYMENT_TOKEN_TTL", 5*time.Minute),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete: POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DB are required")
	}
	if cfg.VNPayTmnCode == "" || cfg.VNPayHashSecret == "" {
		return nil, fmt.Errorf("gateway config incomplete: VNPAY_TMN_CODE and VNPAY_HASH_SECRET are required")
	}

	return cfg, nil
}

// PostgresDSN assembles the GORM connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if mins, err := strconv.Atoi(val); err == nil {
		return time.Duration(mins) * time.Minute
	}
	return fallback
}
