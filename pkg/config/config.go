package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MessageStorePostgres = "postgres"
	MessageStoreMongo    = "mongo"

	PushScopeParticipants = "participants"
	PushScopeGlobal       = "global"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	PostgresURL             string
	MongoURI                string
	MongoDatabase           string
	MessageStore            string
	RedisAddr               string
	RedisPassword           string
	JWTSecret               string
	JWTExpiry               time.Duration
	BcryptCost              int
	AuthRateLimitPerMinute  int
	PushScope               string
	FirebaseCredentialsPath string
	CORSOrigins             []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		PostgresURL:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialchat"),
		MessageStore:            strings.ToLower(getEnv("MESSAGE_STORE", MessageStorePostgres)),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		PushScope:               strings.ToLower(getEnv("PUSH_SCOPE", PushScopeParticipants)),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.JWTExpiry, err = time.ParseDuration(getEnv("JWT_EXPIRY", "0s")); err != nil {
		return nil, fmt.Errorf("parse JWT_EXPIRY: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("parse BCRYPT_COST: %w", err)
	}
	if cfg.AuthRateLimitPerMinute, err = strconv.Atoi(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "20")); err != nil {
		return nil, fmt.Errorf("parse AUTH_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if c.JWTExpiry < 0 {
		return fmt.Errorf("JWT_EXPIRY must not be negative")
	}
	// bcrypt.MinCost..bcrypt.MaxCost
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	switch c.MessageStore {
	case MessageStorePostgres:
	case MessageStoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when MESSAGE_STORE=mongo")
		}
	default:
		return fmt.Errorf("unknown MESSAGE_STORE %q", c.MessageStore)
	}
	switch c.PushScope {
	case PushScopeParticipants, PushScopeGlobal:
	default:
		return fmt.Errorf("unknown PUSH_SCOPE %q", c.PushScope)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
