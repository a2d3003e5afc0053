package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SSLCommerz SSLCommerzConfig

	BackendBaseURL  string
	FrontendBaseURL string
	Currency        string

	AMQPURL string

	LogLevel  string
	LogFormat string
}

// SSLCommerzConfig holds the gateway store credentials. Sandbox switches the
// API host; sandbox and live stores use different credentials.
type SSLCommerzConfig struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "bazaar"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		SSLCommerz: SSLCommerzConfig{
			StoreID:       getEnvOrDefault("SSLCZ_STORE_ID", ""),
			StorePassword: getEnvOrDefault("SSLCZ_STORE_PASSWORD", ""),
			Sandbox:       getBoolEnv("SSLCZ_SANDBOX", true),
		},
		BackendBaseURL:  getEnvOrDefault("BACKEND_BASE_URL", "http://localhost:8080"),
		FrontendBaseURL: getEnvOrDefault("FRONTEND_BASE_URL", "http://localhost:3000"),
		Currency:        getEnvOrDefault("CURRENCY", "BDT"),
		AMQPURL:         getEnvOrDefault("AMQP_URL", ""),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
