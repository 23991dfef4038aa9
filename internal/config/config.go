package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hahu_backend/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	AppPort     string
	Version     string
	Storage     string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Location anchors calendar days and weeks for bonuses.
	Location *time.Location

	ReconcileInterval   time.Duration
	LeaderboardInterval time.Duration
	LeaderboardSize     int

	CORSAllowedOrigins   []string
	AdminUsernames       []string
	PaymentCallbackToken string

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	LockTTL  time.Duration
	LockWait time.Duration
}

// Load reads .env (if any) and the environment. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	storage := strings.ToLower(envString("STORAGE", StoragePostgres))
	if storage != StoragePostgres && storage != StorageMemory {
		logger.Fatal("STORAGE must be postgres or memory", "value", storage)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && storage == StoragePostgres {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	paymentToken := os.Getenv("PAYMENT_CALLBACK_TOKEN")
	if paymentToken == "" {
		if storage == StoragePostgres {
			logger.Fatal("PAYMENT_CALLBACK_TOKEN is not set")
		}
		logger.Warn("PAYMENT_CALLBACK_TOKEN is not set; payment callbacks are disabled")
	}

	loc := time.Local
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			logger.Fatal("invalid APP_TIMEZONE", "value", tz, "error", err)
		}
		loc = l
	}

	return &Config{
		AppPort:     envString("APP_PORT", "8080"),
		Version:     envString("APP_VERSION", "dev"),
		Storage:     storage,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		JWTTTL:      envDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		Location: loc,

		ReconcileInterval:   envDuration("RECONCILE_INTERVAL", time.Hour),
		LeaderboardInterval: envDuration("LEADERBOARD_PUSH_INTERVAL", 10*time.Second),
		LeaderboardSize:     envInt("LEADERBOARD_SIZE", 100),

		CORSAllowedOrigins:   envList("CORS_ALLOWED_ORIGINS"),
		AdminUsernames:       envList("ADMIN_USERNAMES"),
		PaymentCallbackToken: paymentToken,

		APIRateLimit:   envInt("API_RATE_LIMIT", 60),
		APIRateWindow:  time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		LockTTL:  envDuration("PAYMENT_LOCK_TTL", 30*time.Second),
		LockWait: envDuration("PAYMENT_LOCK_WAIT", 5*time.Second),
	}
}

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// envInt returns def for unset, malformed or negative values.
func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// envDuration accepts Go durations ("90s") or plain seconds ("90").
func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

// envList splits a comma separated variable, dropping blanks.
func envList(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
