package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	JWTSecret        string
	JWTIssuer        string
	EnableHSTS       bool
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFrom         string
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// fileConfig is the optional YAML overlay. Only fields present in the file
// override the environment.
type fileConfig struct {
	DatabaseURL      *string `yaml:"database_url"`
	ServerPort       *string `yaml:"server_port"`
	BaseURL          *string `yaml:"base_url"`
	FrontendURL      *string `yaml:"frontend_url"`
	JWTSecret        *string `yaml:"jwt_secret"`
	JWTIssuer        *string `yaml:"jwt_issuer"`
	EnableHSTS       *bool   `yaml:"enable_hsts"`
	RedisURL         *string `yaml:"redis_url"`
	RabbitMQURL      *string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch *int    `yaml:"rabbitmq_prefetch"`
	SMTPHost         *string `yaml:"smtp_host"`
	SMTPPort         *int    `yaml:"smtp_port"`
	SMTPUsername     *string `yaml:"smtp_username"`
	SMTPPassword     *string `yaml:"smtp_password"`
	SMTPFrom         *string `yaml:"smtp_from"`
	OTELEnabled      *bool   `yaml:"otel_enabled"`
	OTELEndpoint     *string `yaml:"otel_endpoint"`
}

// Load loads configuration from environment variables, then applies the YAML
// file named by CONFIG_FILE on top, if set.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", ""),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", ""),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for reminder delivery")
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.DatabaseURL, fc.DatabaseURL)
	setString(&c.ServerPort, fc.ServerPort)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.FrontendURL, fc.FrontendURL)
	setString(&c.JWTSecret, fc.JWTSecret)
	setString(&c.JWTIssuer, fc.JWTIssuer)
	setBool(&c.EnableHSTS, fc.EnableHSTS)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.RabbitMQURL, fc.RabbitMQURL)
	setInt(&c.RabbitMQPrefetch, fc.RabbitMQPrefetch)
	setString(&c.SMTPHost, fc.SMTPHost)
	setInt(&c.SMTPPort, fc.SMTPPort)
	setString(&c.SMTPUsername, fc.SMTPUsername)
	setString(&c.SMTPPassword, fc.SMTPPassword)
	setString(&c.SMTPFrom, fc.SMTPFrom)
	setBool(&c.OTELEnabled, fc.OTELEnabled)
	setString(&c.OTELEndpoint, fc.OTELEndpoint)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
