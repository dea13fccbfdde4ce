package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	RequestTimeout time.Duration

	DBPath     string
	DBLogLevel string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	LogLevel  string
	LogFormat string

	// Token revocation is kept in memory unless a Redis address is given
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Otel
	OTELExporterEndpoint string
	OTELServiceName      string
	TraceStdout          bool

	CORSAllowOrigin string
}

func ReadConfig() *Config {
	return &Config{
		Port:           getEnvOrDefault("PORT", "8008"),
		RequestTimeout: getDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),

		DBPath:     getEnvOrDefault("DB_PATH", "project-management.db"),
		DBLogLevel: getEnvOrDefault("DB_LOG_LEVEL", "warn"),

		JWTSecret:   getEnvOrDefault("JWT_SECRET", "development-insecure-secret-change-me"),
		JWTIssuer:   getEnvOrDefault("JWT_ISSUER", "project-management-api"),
		JWTAudience: getEnvOrDefault("JWT_AUDIENCE", "project-management-clients"),
		JWTTTL:      getDurationOrDefault("JWT_TTL", 24*time.Hour),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		OTELExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName:      getEnvOrDefault("OTEL_SERVICE_NAME", "project-management-api"),
		TraceStdout:          os.Getenv("TRACE_STDOUT") == "true",

		CORSAllowOrigin: getEnvOrDefault("CORS_ALLOW_ORIGIN", "*"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// Durations use time.ParseDuration syntax, e.g. "15s", "24h".
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
