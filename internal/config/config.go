package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// StoreBackend selects the document store: "postgres", "redis" or
	// "memory".
	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	Port        string
	MetricsPort string
	AdminToken  string

	CacheTTL      time.Duration
	CacheMaxItems int

	ForpromoBaseURL  string
	ForpromoAPIKey   string
	ForpromoRelayURL string
	CdopromoBaseURL  string
	CdopromoUser     string
	CdopromoPassword string
	DvelaBaseURL     string
	DvelaToken       string
	InnovaBaseURL    string
}

func Load() *Config {
	// .env from the repo root when running under cmd/<tool>, else cwd
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	return &Config{
		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),

		CacheTTL:      getDuration("CACHE_TTL", 10*time.Minute),
		CacheMaxItems: getInt("CACHE_MAX_ITEMS", 100),

		ForpromoBaseURL:  os.Getenv("FORPROMO_BASE_URL"),
		ForpromoAPIKey:   os.Getenv("FORPROMO_API_KEY"),
		ForpromoRelayURL: os.Getenv("FORPROMO_RELAY_URL"),
		CdopromoBaseURL:  os.Getenv("CDOPROMO_BASE_URL"),
		CdopromoUser:     os.Getenv("CDOPROMO_USER"),
		CdopromoPassword: os.Getenv("CDOPROMO_PASSWORD"),
		DvelaBaseURL:     os.Getenv("DVELA_BASE_URL"),
		DvelaToken:       os.Getenv("DVELA_TOKEN"),
		InnovaBaseURL:    os.Getenv("INNOVA_BASE_URL"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
