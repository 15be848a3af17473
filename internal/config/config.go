package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr             string
	RoutePrefix          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	AnonKey   string
	JWTSecret string

	StoreBackend string
	PebblePath   string
	DatabaseURL  string
	KVTable      string

	RateLimitRPS   float64
	RateLimitBurst int
	MaxTextLength  int

	LogLevel  string
	LogFormat string

	StatsInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		RoutePrefix:          "/" + strings.Trim(getenv("ROUTE_PREFIX", "/archive"), "/"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		StoreBackend:         strings.ToLower(getenv("STORE_BACKEND", BackendMemory)),
		PebblePath:           getenv("PEBBLE_PATH", "data/unsent"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		KVTable:              getenv("KV_TABLE", "kv_store"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		LogFormat:            getenv("LOG_FORMAT", "json"),
	}
	if cfg.RoutePrefix == "/" {
		cfg.RoutePrefix = ""
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.AnonKey, err = mustGetenv("ANON_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "10")); err != nil {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.MaxTextLength, err = strconv.Atoi(getenv("MAX_TEXT_LENGTH", "2000")); err != nil {
		return Config{}, fmt.Errorf("invalid MAX_TEXT_LENGTH: %w", err)
	}
	if cfg.StatsInterval, err = time.ParseDuration(getenv("STATS_INTERVAL", "30s")); err != nil {
		return Config{}, fmt.Errorf("invalid STATS_INTERVAL: %w", err)
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendPebble:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("missing env: DATABASE_URL (required for STORE_BACKEND=%s)", BackendPostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("missing env: %s", key)
	}
	return v, nil
}
