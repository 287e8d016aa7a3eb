package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/splittimer/go/clients/records_client"
	"github.com/mcdev12/splittimer/go/internal/scheduler"
	"github.com/mcdev12/splittimer/go/internal/splittimer"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TrailName      string        `yaml:"trail_name"`
	PlayerID       string        `yaml:"player_id"`
	Checkpoints    int           `yaml:"checkpoints"`
	RecordsURL     string        `yaml:"records_url"`
	RecordsTimeout time.Duration `yaml:"records_timeout"`
	NATSURL        string        `yaml:"nats_url"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	LogFile        string        `yaml:"log_file"`
	LogLevel       string        `yaml:"log_level"`

	Widget struct {
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		LabelTimeout    time.Duration `yaml:"label_timeout"`
		HideDelay       time.Duration `yaml:"hide_delay"`
	} `yaml:"widget"`
}

func defaultConfig() *Config {
	config := &Config{
		RecordsURL:     records_client.DefaultBaseURL,
		RecordsTimeout: 5 * time.Second,
		FrameInterval:  scheduler.DefaultFrameInterval,
		LogFile:        "splittimer.log",
		LogLevel:       "info",
	}
	config.Widget.RefreshInterval = splittimer.DefaultRefreshInterval
	config.Widget.LabelTimeout = splittimer.DefaultLabelTimeout
	config.Widget.HideDelay = splittimer.DefaultHideDelay
	return config
}

// loadConfig reads the optional YAML file, then applies environment overrides.
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

	config.TrailName = getEnv("TRAIL_NAME", config.TrailName)
	config.PlayerID = getEnv("PLAYER_ID", config.PlayerID)
	config.Checkpoints = getEnvAsInt("TRAIL_CHECKPOINTS", config.Checkpoints)
	config.RecordsURL = getEnv("RECORDS_URL", config.RecordsURL)
	config.RecordsTimeout = getEnvAsDuration("RECORDS_TIMEOUT", config.RecordsTimeout)
	config.NATSURL = getEnv("NATS_URL", config.NATSURL)
	config.LogFile = getEnv("LOG_FILE", config.LogFile)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	if config.TrailName == "" {
		return nil, errors.New("trail name is required (trail_name or TRAIL_NAME)")
	}
	if config.Checkpoints < 0 {
		return nil, fmt.Errorf("checkpoints must not be negative, got %d", config.Checkpoints)
	}
	if config.RecordsTimeout <= 0 {
		return nil, fmt.Errorf("records timeout must be positive, got %v", config.RecordsTimeout)
	}
	return config, nil
}

func (c *Config) widgetConfig() splittimer.Config {
	cfg := splittimer.DefaultConfig()
	cfg.RefreshInterval = c.Widget.RefreshInterval
	cfg.LabelTimeout = c.Widget.LabelTimeout
	cfg.HideDelay = c.Widget.HideDelay
	return cfg
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
