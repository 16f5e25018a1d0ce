package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	Store string // "postgres" or "memory"
	DBURL string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	CORSOrigins []string

	RateLimit  int
	RateWindow time.Duration

	AuthMode  string // "passthrough" or "jwt"
	JWTSecret string

	OTELEndpoint string
}

func Load() Config {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	return Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnvInt("PORT", 8080),
		Store:         getEnv("STORE", "postgres"),
		DBURL:         buildDBURL(),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimit:     getEnvInt("RATE_LIMIT", 120),
		RateWindow:    time.Duration(getEnvInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthMode:      getEnv("AUTH_MODE", "passthrough"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		OTELEndpoint:  getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "showcase")
	pass := getEnv("DB_PASSWORD", "showcase")
	name := getEnv("DB_NAME", "showcase")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}

	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
