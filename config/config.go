// Package config reads the process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bokaap-reservations/service"
	"bokaap-reservations/statemachine"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	defaultMongoDB = "bokaap_deli"
)

var ErrMissingMongoURL = errors.New("MONGO_URL is required when STORE_DRIVER=mongo")

type Config struct {
	StoreDriver string
	MongoURL    string
	MongoDB     string
	SQLitePath  string

	JWTSecret []byte
	TokenTTL  time.Duration

	ResendAPIKey string
	MailFrom     string

	AMQPURL         string
	NotifyWorkers   int
	NotifyQueueSize int

	RedisURL     string
	MenuCacheTTL time.Duration

	CORSOrigins []string
	Port        string
	GinMode     string

	AdminSetup   service.SetupMode
	StatusPolicy statemachine.Policy
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // ok if missing in prod
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURL:     os.Getenv("MONGO_URL"),
		SQLitePath:   getEnv("SQLITE_PATH", "bokaap_deli.db"),
		JWTSecret:    []byte(getEnv("JWT_SECRET", "bokaap_deli_dev_secret")),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		Port:         getEnv("PORT", "8080"),
		GinMode:      os.Getenv("GIN_MODE"),
	}

	var err error
	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURL == "" {
			return nil, ErrMissingMongoURL
		}
		cfg.MongoDB = getEnv("MONGO_DB", mongoDBFromURL(cfg.MongoURL))
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", service.DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.MenuCacheTTL, err = durationEnv("MENU_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NotifyWorkers, err = intEnv("NOTIFY_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.NotifyQueueSize, err = intEnv("NOTIFY_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.AdminSetup, err = service.ParseSetupMode(getEnv("ADMIN_SETUP", string(service.SetupOnce))); err != nil {
		return nil, err
	}
	if cfg.StatusPolicy, err = statemachine.ParsePolicy(getEnv("STATUS_POLICY", string(statemachine.PolicyEnumerated))); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mongoDBFromURL uses the database named in the connection string path, if any.
func mongoDBFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultMongoDB
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDB
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration like 30m", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
