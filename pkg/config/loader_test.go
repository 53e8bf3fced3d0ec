package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	DB     DBConfig     `yaml:"db"`
	Redis  RedisConfig  `yaml:"redis"`
	Server ServerConfig `yaml:"server"`
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_MergesEnvironmentFileOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
  name: tracker
redis:
  ttl: 30s
server:
  port: ":8080"
`)
	writeFile(t, dir, "staging.yaml", `
db:
  host: db.staging
`)

	var cfg testConfig
	if err := Load("staging", dir, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DB.Host != "db.staging" {
		t.Fatalf("expected host from staging.yaml, got %q", cfg.DB.Host)
	}
	if cfg.DB.Port != 5432 || cfg.DB.Name != "tracker" {
		t.Fatalf("expected base values to survive merge, got %+v", cfg.DB)
	}
	if cfg.Redis.TTL != 30*time.Second {
		t.Fatalf("expected ttl 30s, got %s", cfg.Redis.TTL)
	}
}

func TestLoad_SecretsAndEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  user: app
  password: ${DB_SECRET}
server:
  port: ":8080"
`)
	writeFile(t, dir, "secrets.env", "# local secrets\nDB_SECRET=\"s3cret\"\n")
	t.Setenv("SERVER_PORT", ":9090")

	var cfg testConfig
	if err := Load("local", dir, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DB.Password != "s3cret" {
		t.Fatalf("expected password substituted from secrets.env, got %q", cfg.DB.Password)
	}
	if cfg.Server.Port != ":9090" {
		t.Fatalf("expected SERVER_PORT to win, got %q", cfg.Server.Port)
	}
}

func TestLoad_MissingBaseFails(t *testing.T) {
	var cfg testConfig
	if err := Load("local", t.TempDir(), &cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDBConfigDSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n"}
	if got, want := c.DSN(), "postgres://u:p@h:1/n?sslmode=disable"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
