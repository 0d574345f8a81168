package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMySQL    = "mysql"
)

const (
	PasswordHasherArgon2id = "argon2id"
	PasswordHasherBcrypt   = "bcrypt"
)

var ErrMissingSigningKey = errors.New("jwt signing key is not configured")

// Config is built once at startup and handed to every component that needs
// it. Nothing reads the environment after Read returns.
type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	JWT      JWTConfig
	Password PasswordConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	MySQL    MySQLConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"3000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SECRET" env-required:"true"`
	Issuer     string        `env:"JWT_ISSUER" env-default:"tasklist"`
	TTL        time.Duration `env:"JWT_TTL" env-default:"24h"`
}

type PasswordConfig struct {
	Hasher     string `env:"PASSWORD_HASHER" env-default:"argon2id"`
	BcryptCost int    `env:"BCRYPT_COST" env-default:"10"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"sqlite"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" env-default:"todo.db"`
}

type MySQLConfig struct {
	Addr     string `env:"MYSQL_ADDR" env-default:"127.0.0.1:3306"`
	Username string `env:"MYSQL_USERNAME"`
	Password string `env:"MYSQL_PASSWORD"`
	Database string `env:"MYSQL_DATABASE"`
}

// ConnString returns the pgx connection url for the postgres settings.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host,
		c.Port, c.Database, c.SSLMode)
}

// Validate reports configuration that cleanenv tags cannot express.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	if strings.TrimSpace(c.JWT.SigningKey) == "" {
		return ErrMissingSigningKey
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}

	switch c.Password.Hasher {
	case PasswordHasherArgon2id, PasswordHasherBcrypt:
	default:
		return fmt.Errorf("unknown password hasher: %s", c.Password.Hasher)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.Username == "" || c.Postgres.Database == "" {
			return errors.New("postgres username and database are required")
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return errors.New("sqlite path is required")
		}
	case StorageDriverMySQL:
		if c.MySQL.Username == "" || c.MySQL.Database == "" {
			return errors.New("mysql username and database are required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	return nil
}
