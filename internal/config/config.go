package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Backend string `yaml:"backend"` // "memory" or "postgres"
		URL     string `yaml:"url"`     // postgres DSN, ignored for memory
	} `yaml:"store"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		MasterKey string `yaml:"master_key"` // base64 AES-256 key for credentials at rest, optional
	} `yaml:"auth"`
	Channels struct {
		VerifyToken string `yaml:"verify_token"` // Meta webhook handshake secret
	} `yaml:"channels"`
	Realtime struct {
		StatsIntervalSeconds    int `yaml:"stats_interval_seconds"`
		PlatformIntervalSeconds int `yaml:"platform_interval_seconds"`
		StatsWindow             int `yaml:"stats_window"`
	} `yaml:"realtime"`
	Debug bool `yaml:"debug"`
}

// LoadConfig reads configuration from the specified YAML file and applies
// defaults for omitted fields.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Store.Backend == "" {
		config.Store.Backend = "memory"
	}
	if config.Realtime.StatsIntervalSeconds <= 0 {
		config.Realtime.StatsIntervalSeconds = 30
	}
	if config.Realtime.PlatformIntervalSeconds <= 0 {
		config.Realtime.PlatformIntervalSeconds = 60
	}
	if config.Realtime.StatsWindow <= 0 {
		config.Realtime.StatsWindow = 1000
	}

	return config, nil
}
