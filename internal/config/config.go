package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Session tokens
	JWTSecret     string
	JWTExpiryDays int

	// Password reset links
	AppBaseURL string

	// Mail delivery
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// Queue nudge channel
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Bootstrap admin
	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSAllowedOrigins []string
	OTLPEndpoint       string
}

func Load() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL: buildDBURL(),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiryDays: getEnvInt("JWT_EXPIRES_IN_DAYS", 90),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		SMTPHost:     getEnv("EMAIL_HOST", ""),
		SMTPPort:     getEnvInt("EMAIL_PORT", 587),
		SMTPUsername: getEnv("EMAIL_USERNAME", ""),
		SMTPPassword: getEnv("EMAIL_PASSWORD", ""),
		MailFrom:     getEnv("EMAIL_FROM", "Jobhub <no-reply@jobhub.local>"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		OTLPEndpoint:       getEnv("OTLP_ENDPOINT", ""),
	}
}

// IsProd reports whether the process serves real traffic. Diagnostic error
// detail must never reach clients when this is true.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func (c Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryDays) * 24 * time.Hour
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "jobhub")
	pass := getEnv("DB_PASSWORD", "jobhub")
	name := getEnv("DB_NAME", "jobhub")
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

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}

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
