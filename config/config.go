package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the server reads from the environment.
type Config struct {
	Port     string
	LogLevel string

	DatabaseDSN string

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Relay
	DispatchTimeout time.Duration
	PingInterval    time.Duration
	PongTimeout     time.Duration

	// Collaborators
	RedisURL      string
	FCMEndpoint   string
	FCMServerKey  string
	MailAPIURL    string
	MailAPIKey    string
	MailFrom      string
	VerifyCodeTTL time.Duration
}

// Load reads .env if present and builds the config from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8082"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"root:root@tcp(127.0.0.1:3306)/medical_app?charset=utf8mb4&parseTime=True&loc=Local"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		RefreshSecret:   getEnv("REFRESH_TOKEN_SECRET", "dev-refresh-secret"),
		AccessTokenTTL:  getDuration("JWT_EXPIRE_IN", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_EXPIRE_IN", 30*24*time.Hour),

		DispatchTimeout: getDuration("DISPATCH_TIMEOUT", 5*time.Second),
		PingInterval:    getDuration("WS_PING_INTERVAL", 10*time.Second),
		PongTimeout:     getDuration("WS_PONG_TIMEOUT", 15*time.Second),

		RedisURL:      os.Getenv("REDIS_URL"),
		FCMEndpoint:   getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey:  os.Getenv("FCM_SERVER_KEY"),
		MailAPIURL:    os.Getenv("MAIL_API_URL"),
		MailAPIKey:    os.Getenv("MAIL_API_KEY"),
		MailFrom:      getEnv("MAIL_FROM", "Medical App <noreply@medicalapp.com>"),
		VerifyCodeTTL: getDuration("VERIFY_CODE_TTL", 30*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Plain numbers are treated as seconds, matching the old deployment env files.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
