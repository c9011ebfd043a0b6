package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
// It is loaded once at startup and passed explicitly to the components that need it.
type Config struct {
	ServerPort     int
	DatabaseURL    string // SQLite file path, or a mongodb:// URI
	MongoDatabase  string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	LogLevel       string
	LogFormat      string // "console" or "json"
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	StatsSchedule  string // cron spec for the catalog stats job

	// EnforceProductOwnership rejects updates to products the caller does not own.
	EnforceProductOwnership bool
}

var defaults = map[string]any{
	"PORT":                      4000,
	"DATABASE_URL":              "./shopgraph.db",
	"MONGO_DATABASE":            "shopgraph",
	"TOKEN_TTL":                 "168h",
	"BCRYPT_COST":               10,
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "console",
	"CORS_ALLOWED_ORIGINS":      "*",
	"RATE_LIMIT_RPS":            20.0,
	"RATE_LIMIT_BURST":          40,
	"STATS_SCHEDULE":            "@every 1m",
	"ENFORCE_PRODUCT_OWNERSHIP": false,
}

// Load loads configuration from defaults, an optional config file and the environment.
// Environment variables take precedence over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		ServerPort:              v.GetInt("PORT"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		TokenTTL:                v.GetDuration("TOKEN_TTL"),
		BcryptCost:              v.GetInt("BCRYPT_COST"),
		LogLevel:                strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:               strings.ToLower(v.GetString("LOG_FORMAT")),
		AllowedOrigins:          splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimitRPS:            v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:          v.GetInt("RATE_LIMIT_BURST"),
		StatsSchedule:           v.GetString("STATS_SCHEDULE"),
		EnforceProductOwnership: v.GetBool("ENFORCE_PRODUCT_OWNERSHIP"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesMongo reports whether DatabaseURL points at a MongoDB deployment.
func (c *Config) UsesMongo() bool {
	return strings.HasPrefix(c.DatabaseURL, "mongodb://") || strings.HasPrefix(c.DatabaseURL, "mongodb+srv://")
}

func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required configuration is not set: %v", missing)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.ServerPort)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL %s", c.TokenTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST %d", c.BcryptCost)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
