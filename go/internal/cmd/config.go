package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string        `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		LogLevel       string        `yaml:"log_level"`
	} `yaml:"server"`
	NATS struct {
		URL           string        `yaml:"url"`
		MaxReconnects int           `yaml:"max_reconnects"`
		ReconnectWait time.Duration `yaml:"reconnect_wait"`
	} `yaml:"nats"`
	Outbox struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		BatchSize    int32         `yaml:"batch_size"`
	} `yaml:"outbox"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = "8080"
	config.Server.ReadTimeout = 10 * time.Second
	config.Server.WriteTimeout = 10 * time.Second
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.LogLevel = "info"
	config.NATS.MaxReconnects = -1
	config.NATS.ReconnectWait = 2 * time.Second
	config.Outbox.PollInterval = 2 * time.Second
	config.Outbox.BatchSize = 100
	return &config
}

// loadConfig reads the optional YAML file, then applies environment overrides.
// An empty NATS URL disables record notifications.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Server.LogLevel = getEnv("LOG_LEVEL", config.Server.LogLevel)
	config.NATS.URL = getEnv("NATS_URL", config.NATS.URL)
	config.NATS.MaxReconnects = getEnvAsInt("NATS_MAX_RECONNECTS", config.NATS.MaxReconnects)

	return config, nil
}

func (c *Config) logLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Server.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
