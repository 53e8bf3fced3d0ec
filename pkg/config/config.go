package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host        string `yaml:"host" env:"DB_HOST"`
	Port        int    `yaml:"port" env:"DB_PORT"`
	User        string `yaml:"user" env:"DB_USER"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	Name        string `yaml:"name" env:"DB_NAME"`
	MaxConns    int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	// SlowQuery is the threshold above which a statement is logged as slow.
	SlowQuery time.Duration `yaml:"slow_query" env:"DB_SLOW_QUERY"`
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

// MQConfig 消息队列配置. An empty URL disables event publishing.
type MQConfig struct {
	URL string `yaml:"url" env:"MQ_URL"`
}

// RedisConfig Redis配置. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `yaml:"port" env:"SERVER_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// OtelConfig OpenTelemetry 配置
type OtelConfig struct {
	Enabled  bool   `yaml:"enabled" env:"OTEL_ENABLED"`
	Endpoint string `yaml:"endpoint" env:"OTEL_ENDPOINT"`
}

// OverrideFromEnv 从环境变量覆盖配置. Fields whose variable is unset keep
// the value decoded from yaml.
func OverrideFromEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
