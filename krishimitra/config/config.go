package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Backend services the gateway relays to.
	AdvisoryURL  string
	FeedbackURL  string
	WeatherURL   string
	MarketURL    string
	DetectionURL string
	TTSURL       string

	// Redis cache for the weather/market relays.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// MinIO archive for uploaded pest images.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string

	// Sessions idle longer than this are evicted.
	SessionTTL time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		Port:           getEnv("PORT", "8000"),
		AdvisoryURL:    getEnv("ADVISORY_URL", "http://localhost:5000/api/chat"),
		FeedbackURL:    getEnv("FEEDBACK_URL", "http://localhost:5000/api/feedback"),
		WeatherURL:     getEnv("WEATHER_URL", "http://localhost:5000/api/weather"),
		MarketURL:      getEnv("MARKET_URL", "http://localhost:5000/api/market-prices"),
		DetectionURL:   getEnv("DETECTION_URL", "http://localhost:5000/api/detect-disease"),
		TTSURL:         getEnv("TTS_URL", "http://localhost:5000/api/text-to-speech"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CacheTTL:       getEnvDuration("CACHE_TTL", 10*time.Minute),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "krishimitra"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 2*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
