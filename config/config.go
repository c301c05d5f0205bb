package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env               string
	HTTPAddr          string
	DBDriver          string
	BrokerAddress     string
	GeminiModel       string
	GeneratorTimeout  time.Duration
	WeatherCacheTTL   time.Duration
	R2BucketName      string
	SentryDSN         string
	OverdueAfterDays  int
	HistoryWindowDays int
	ColorWheel        []string
	ColorAliases      map[string]string
}

var (
	loadOnce sync.Once
	v        *viper.Viper
)

func instance() *viper.Viper {
	loadOnce.Do(func() {
		// .env is optional, real environment wins
		_ = godotenv.Load()
		v = viper.New()
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetDefault("ENV", "local")
		v.SetDefault("HTTP_ADDR", ":8083")
		v.SetDefault("DB_DRIVER", "postgres")
		v.SetDefault("ASYNC_BROKER_ADDRESS", "localhost:6379")
		v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
		v.SetDefault("GENERATOR_TIMEOUT_SECONDS", 20)
		v.SetDefault("WEATHER_CACHE_MINUTES", 10)
		v.SetDefault("OVERDUE_AFTER_DAYS", 30)
		v.SetDefault("HISTORY_WINDOW_DAYS", 7)
	})
	return v
}

// Load resolves the process configuration from the environment (and .env when present).
func Load() Config {
	cfg := instance()
	return Config{
		Env:               cfg.GetString("ENV"),
		HTTPAddr:          cfg.GetString("HTTP_ADDR"),
		DBDriver:          cfg.GetString("DB_DRIVER"),
		BrokerAddress:     cfg.GetString("ASYNC_BROKER_ADDRESS"),
		GeminiModel:       cfg.GetString("GEMINI_MODEL"),
		GeneratorTimeout:  time.Duration(cfg.GetInt("GENERATOR_TIMEOUT_SECONDS")) * time.Second,
		WeatherCacheTTL:   time.Duration(cfg.GetInt("WEATHER_CACHE_MINUTES")) * time.Minute,
		R2BucketName:      cfg.GetString("R2_BUCKET_NAME"),
		SentryDSN:         cfg.GetString("SENTRY_DSN"),
		OverdueAfterDays:  cfg.GetInt("OVERDUE_AFTER_DAYS"),
		HistoryWindowDays: cfg.GetInt("HISTORY_WINDOW_DAYS"),
		ColorWheel:        splitList(cfg.GetString("COLOR_WHEEL")),
		ColorAliases:      splitPairs(cfg.GetString("COLOR_ALIASES")),
	}
}

// splitList reads "a, b, c".
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitPairs reads "k=v, k2=v2". Malformed pairs are ignored.
func splitPairs(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range splitList(raw) {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func GetEnv(key, fallback string) string {
	value := instance().GetString(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// JWTSecret is the HMAC key for access and refresh tokens.
func JWTSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", ""))
}

// PostgresDSN builds the connection string from DB_* variables.
func PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		GetEnv("DB_USERNAME", ""),
		GetEnv("DB_PASSWORD", ""),
		GetEnv("DB_HOST", ""),
		GetEnv("DB_PORT", ""),
		GetEnv("DB_NAME", ""),
	)
}
