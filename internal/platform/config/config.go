package config

import (
	"os"
	"time"
)

// Config captures process-level configuration sourced from the environment.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	Redis         RedisConfig

	// BootstrapOperator seeds a default operator account when the
	// operator store is empty, so a fresh deployment is reachable.
	BootstrapOperator string
	BootstrapPassword string
}

// RedisConfig holds connection settings for the notification transport.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("RFDIST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	bootstrapOperator := os.Getenv("BOOTSTRAP_OPERATOR")
	if bootstrapOperator == "" {
		bootstrapOperator = "admin"
	}
	bootstrapPassword := os.Getenv("BOOTSTRAP_PASSWORD")
	if bootstrapPassword == "" {
		bootstrapPassword = "admin123"
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		BootstrapOperator: bootstrapOperator,
		BootstrapPassword: bootstrapPassword,
	}
}
