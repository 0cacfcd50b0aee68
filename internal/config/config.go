package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env            string
	Port           int
	DBURL          string
	PublicURL      string
	JWTSecret      string
	AccessTTL      time.Duration
	RedisAddr      string
	OTLPTarget     string
	SeedEmail      string
	SeedPassword   string
	SeedName       string
	MaxUploadBytes int64
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:            env,
		Port:           port,
		DBURL:          dbURL,
		PublicURL:      getEnv("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", port)),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:      getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		OTLPTarget:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SeedEmail:      getEnv("SEED_USER_EMAIL", ""),
		SeedPassword:   getEnv("SEED_USER_PASSWORD", ""),
		SeedName:       getEnv("SEED_USER_NAME", "admin"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "studyqr")
	pass := getEnv("DB_PASSWORD", "studyqr")
	name := getEnv("DB_NAME", "studyqr")
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
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
