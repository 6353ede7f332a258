package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the whole application configuration.
type Config struct {
	Port  string // 8080
	GoEnv string // development / production

	DatabaseURL      string // takes priority over the POSTGRES_* set
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string

	FrontendURL string // checkout success/cancel redirects
	Currency    string // inr

	Stripe StripeConfig

	RedisURL string // empty disables the cart cache

	KafkaBrokers    []string // empty disables order event relay
	KafkaOrderTopic string

	RateLimitRPS float64
}

// Payment gateway credentials, handed to the adapter at construction.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// Configured reports whether checkout can be offered at all.
func (s StripeConfig) Configured() bool {
	return s.SecretKey != ""
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	pgPort, err := strconv.Atoi(get("POSTGRES_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("POSTGRES_PORT must be number: %w", err)
	}

	rps, err := strconv.ParseFloat(get("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
	}

	cfg := Config{
		Port:  get("PORT", "8080"),
		GoEnv: get("GO_ENV", "development"),

		DatabaseURL:      get("DATABASE_URL", ""),
		PostgresUser:     get("POSTGRES_USER", ""),
		PostgresPassword: get("POSTGRES_PASSWORD", ""),
		PostgresDB:       get("POSTGRES_DB", ""),
		PostgresHost:     get("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  get("POSTGRES_SSLMODE", "disable"),

		JWTSecret: get("JWT_SECRET", ""),

		FrontendURL: strings.TrimRight(get("FRONTEND_URL", "http://localhost:3000"), "/"),
		Currency:    strings.ToLower(get("CURRENCY", "inr")),

		Stripe: StripeConfig{
			SecretKey:     get("STRIPE_SECRET_KEY", ""),
			WebhookSecret: get("STRIPE_WEBHOOK_SECRET", ""),
		},

		RedisURL: get("REDIS_URL", ""),

		KafkaBrokers:    splitList(get("KAFKA_BROKERS", "")),
		KafkaOrderTopic: get("KAFKA_ORDER_TOPIC", "order-events"),

		RateLimitRPS: rps,
	}

	// required
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Stripe.SecretKey != "" && cfg.Stripe.WebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}

	return cfg, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
