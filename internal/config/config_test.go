package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:      EnvDev,
		JWT:      JWTConfig{SigningKey: "secret", TTL: 24 * time.Hour},
		Password: PasswordConfig{Hasher: PasswordHasherArgon2id},
		Storage:  StorageConfig{Driver: StorageDriverSQLite},
		SQLite:   SQLiteConfig{Path: "todo.db"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsEmptySigningKey(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.SigningKey = "   "

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingSigningKey) {
		t.Fatalf("expected ErrMissingSigningKey, got %v", err)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	tests := map[string]func(*Config){
		"env":    func(c *Config) { c.Env = "staging" },
		"hasher": func(c *Config) { c.Password.Hasher = "md5" },
		"driver": func(c *Config) { c.Storage.Driver = "mongo" },
		"ttl":    func(c *Config) { c.JWT.TTL = 0 },
		"sqlite": func(c *Config) { c.SQLite.Path = "" },
		"postgres": func(c *Config) {
			c.Storage.Driver = StorageDriverPostgres
		},
		"mysql": func(c *Config) {
			c.Storage.Driver = StorageDriverMySQL
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEnvReaderRead(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORAGE_DRIVER", StorageDriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/tasks.db")

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.JWT.SigningKey != "from-env" {
		t.Fatalf("expected signing key from env, got %q", cfg.JWT.SigningKey)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", cfg.JWT.TTL)
	}
	if cfg.HTTP.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.HTTP.Port)
	}
	if cfg.Password.Hasher != PasswordHasherArgon2id {
		t.Fatalf("expected argon2id hasher, got %q", cfg.Password.Hasher)
	}
}

func TestEnvReaderRequiresSigningKey(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("JWT_SECRET", "")

	_, err := NewEnvReader().Read()
	if err == nil {
		t.Fatal("expected error for missing signing key")
	}
}

func TestPostgresConnString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		Username: "todo",
		Password: "pw",
		Database: "tasks",
		SSLMode:  "disable",
	}

	got := cfg.ConnString()
	if !strings.HasPrefix(got, "postgres://todo:pw@db:5432/tasks") {
		t.Fatalf("unexpected conn string %q", got)
	}
}
