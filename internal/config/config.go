package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	JWTTTL          time.Duration
	FeedCacheTTL    time.Duration
	DefaultPageSize int
	MaxPageSize     int
	AuthRateMax     int
	AuthRateWindow  time.Duration
	APIRateMax      int
	APIRateWindow   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSROOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Classroom API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "4000")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("feed.cache_ttl", "1m")
	v.SetDefault("page.default_size", 10)
	v.SetDefault("page.max_size", 100)
	v.SetDefault("auth.rate_max", 5)
	v.SetDefault("auth.rate_window", "15m")
	v.SetDefault("api.rate_max", 100)
	v.SetDefault("api.rate_window", "15m")

	jwtTTL, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	feedCacheTTL, err := time.ParseDuration(v.GetString("feed.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid feed cache ttl: %w", err)
	}

	authRateWindow, err := time.ParseDuration(v.GetString("auth.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate window: %w", err)
	}

	apiRateWindow, err := time.ParseDuration(v.GetString("api.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid api rate window: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		JWTTTL:          jwtTTL,
		FeedCacheTTL:    feedCacheTTL,
		DefaultPageSize: v.GetInt("page.default_size"),
		MaxPageSize:     v.GetInt("page.max_size"),
		AuthRateMax:     v.GetInt("auth.rate_max"),
		AuthRateWindow:  authRateWindow,
		APIRateMax:      v.GetInt("api.rate_max"),
		APIRateWindow:   apiRateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}

	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	return cfg, nil
}
