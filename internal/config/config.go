package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "livedesk-dev-secret"

type Config struct {
	AppHost string
	AppPort string
	AppEnv  string

	// JWTSecret signs the anonymous client tokens issued to the chat widget.
	JWTSecret string
	// DemoLogins enables the legacy password bypass accepted by the hosted
	// environment. Must stay off in production.
	DemoLogins bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppHost:       getEnv("APP_HOST", "0.0.0.0"),
		AppPort:       getEnv("APP_PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "development"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		DemoLogins:    getEnv("AUTH_DEMO_LOGINS", "false") == "true",
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_NAME", "livedesk")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_NAME are required")
	}
	if c.AppEnv == "production" {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("config: in production JWT_SECRET is required")
		}
		if c.DemoLogins {
			return errors.New("config: AUTH_DEMO_LOGINS must be off in production")
		}
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
