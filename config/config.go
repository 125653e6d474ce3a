package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Metrics  MetricsConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port string
}

type LoggerConfig struct {
	Level string
}

type PostgresConfig struct {
	// DSN selects the backing store: empty means in-memory.
	DSN string
}

type JWTConfig struct {
	Secret string
}

type MetricsConfig struct {
	Enabled bool
	Token   string
}

// SessionConfig drives the client-side session store (storectl).
type SessionConfig struct {
	// APIBase switches the store from mock mode to real HTTP calls when set.
	APIBase string
	// SnapshotPath is where the persisted session blob lives.
	SnapshotPath string
	// DevLogin enables the unauthenticated LoginAs path. Never set this in
	// production.
	DevLogin bool
}

// Load reads configuration from the environment, with an optional .env file
// layered underneath. Evaluated once at startup.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("PG_DSN", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", false),
			Token:   getEnv("METRICS_TOKEN", ""),
		},
		Session: SessionConfig{
			APIBase:      getEnv("SHOPFRONT_API_BASE", ""),
			SnapshotPath: getEnv("SHOPFRONT_SESSION_FILE", defaultSnapshotPath()),
			DevLogin:     getEnvBool("SHOPFRONT_DEV_LOGIN", false),
		},
	}
}

func defaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return home + "/.shopfront/session.json"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
