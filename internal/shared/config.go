package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	LogLevel          string
	HTTPAddr          string
	MetricsAddr       string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	GBPBase           string
	GBPRPS            int
	JWTSecret         string
	JWTIssuer         string
	Workers           int
	WindowDays        int
	CacheTTL          time.Duration
	RequestTimeout    time.Duration
	SyncBusinessLimit time.Duration
}

// Load reads the environment; a .env file in the working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		LogLevel:          env("LOG_LEVEL", "info"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewdash?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		GBPBase:           env("GBP_BASE_URL", "https://mybusiness.googleapis.com/v4"),
		GBPRPS:            atoi("GBP_RPS", 5),
		JWTSecret:         env("AUTH_JWT_SECRET", ""),
		JWTIssuer:         env("AUTH_JWT_ISSUER", ""),
		Workers:           atoi("SYNC_WORKERS", 4),
		WindowDays:        atoi("METRICS_WINDOW_DAYS", 30),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		RequestTimeout:    time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		SyncBusinessLimit: time.Duration(atoi("SYNC_BUSINESS_TIMEOUT_SECONDS", 120)) * time.Second,
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty")
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
