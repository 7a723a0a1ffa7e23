package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required,oneof=development test staging production"`
	Port        string `validate:"required,numeric"`
	Log         LogConfig
	CORS        CORSConfig
	GraphQL     GraphQLConfig
	Server      ServerConfig
	EventSource string `validate:"required,oneof=netlify apigateway"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"required,oneof=json text"`
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedHosts   []string `validate:"required,min=1,dive,required"`
	PreviewSuffix  string
	AllowedHeaders []string `validate:"required,min=1"`
	AllowedMethods []string `validate:"required,min=1"`
}

// GraphQLConfig holds engine limits; zero means no limit
type GraphQLConfig struct {
	MaxDepth       int `validate:"gte=0"`
	MaxParallelism int `validate:"gte=0"`
}

// ServerConfig holds settings of the local development server
type ServerConfig struct {
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`
	MaxBodyBytes   int64   `validate:"gt=0"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "4000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ALLOWED_HOSTS", "localhost,mixup.troyblank.com")
	v.SetDefault("CORS_PREVIEW_SUFFIX", "mix-up.netlify.app")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Content-Type,Authorization")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")
	v.SetDefault("GRAPHQL_MAX_DEPTH", 0)
	v.SetDefault("GRAPHQL_MAX_PARALLELISM", 0)
	v.SetDefault("RATE_LIMIT_RPS", 50.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("EVENT_SOURCE", "netlify")

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		CORS: CORSConfig{
			AllowedHosts:   splitList(v.GetString("CORS_ALLOWED_HOSTS")),
			PreviewSuffix:  v.GetString("CORS_PREVIEW_SUFFIX"),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			AllowedMethods: splitList(strings.ToUpper(v.GetString("CORS_ALLOWED_METHODS"))),
		},
		GraphQL: GraphQLConfig{
			MaxDepth:       v.GetInt("GRAPHQL_MAX_DEPTH"),
			MaxParallelism: v.GetInt("GRAPHQL_MAX_PARALLELISM"),
		},
		Server: ServerConfig{
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
			MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),
		},
		EventSource: strings.ToLower(v.GetString("EVENT_SOURCE")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the application runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// splitList splits a comma separated value, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
