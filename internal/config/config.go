package config

import (
	"fmt"

	"projecttracker/pkg/config"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	// Store selects the backing store: postgres (default) or memory.
	Store  string              `yaml:"store" env:"STORE"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	Server config.ServerConfig `yaml:"server"`
	Otel   config.OtelConfig   `yaml:"otel"`
}

// Load reads config/<CONFIG_ENV>.yaml over config/base.yaml, then applies
// environment overrides.
func Load(configDir string) (*Config, error) {
	var cfg Config
	if err := config.Load(config.GetConfigEnv(), configDir, &cfg); err != nil {
		return nil, err
	}
	if cfg.Store == "" {
		cfg.Store = StorePostgres
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	return &cfg, nil
}
