package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	ServerPort      int           `json:"server_port"`
	LogLevel        string        `json:"log_level"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	Version         string        `json:"version"`

	// Storage
	StoreBackend string `json:"store_backend"` // memory or redis
	RedisURL     string `json:"redis_url"`
	KeyPrefix    string `json:"key_prefix"` // Prefix for the Redis hashes and queue

	// Command processing
	Async       bool   `json:"async"` // Queue commands for background workers
	QueueName   string `json:"queue_name"`
	QueueSize   int    `json:"queue_size"` // Buffer of the in-memory queue
	WorkerCount int    `json:"worker_count"`
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnvInt("PORT", 8080),
		LogLevel:        getEnvString("LOG_LEVEL", "INFO"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Version:         getEnvString("VERSION", "1.0.0"),
		StoreBackend:    getEnvString("STORE_BACKEND", BackendMemory),
		RedisURL:        getEnvString("REDIS_URL", "redis://localhost:6379"),
		KeyPrefix:       getEnvString("KEY_PREFIX", "taskmanager:"),
		Async:           getEnvBool("ASYNC_MODE", false),
		QueueName:       getEnvString("QUEUE_NAME", "commands"),
		QueueSize:       getEnvInt("QUEUE_SIZE", 64),
		WorkerCount:     getEnvInt("WORKER_COUNT", 1),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Address returns the server address in host:port format
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.StoreBackend == BackendRedis
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (c *Config) validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", c.ServerPort)
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true, "FATAL": true,
	}
	upperLevel := strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if !validLevels[upperLevel] {
		return fmt.Errorf("invalid log level '%s': must be DEBUG, INFO, WARN, ERROR, or FATAL", c.LogLevel)
	}
	c.LogLevel = upperLevel

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout)
	}
	if c.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("invalid shutdown timeout %v: must not exceed 5 minutes", c.ShutdownTimeout)
	}

	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("version cannot be empty")
	}
	c.Version = strings.TrimSpace(c.Version)

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis URL cannot be empty when the redis backend is selected")
		}
	default:
		return fmt.Errorf("invalid store backend '%s': must be memory or redis", c.StoreBackend)
	}

	if c.Async {
		if c.WorkerCount < 1 {
			return fmt.Errorf("worker count must be at least 1 when async mode is enabled")
		}
		if c.StoreBackend == BackendRedis && strings.TrimSpace(c.QueueName) == "" {
			return fmt.Errorf("queue name cannot be empty when commands are queued in redis")
		}
		if c.StoreBackend == BackendMemory && c.QueueSize < 1 {
			return fmt.Errorf("queue size must be at least 1 when async mode is enabled")
		}
	}

	return nil
}
