package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr          string        `env:"VOLUNTEERHUB_ADDR" envDefault:":8080"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"volunteerhub-auth"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"volunteerhub"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	TxTimeout     time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`

	// AuditBuffer sizes the async audit queue. Zero publishes synchronously.
	AuditBuffer int `env:"AUDIT_BUFFER" envDefault:"1024"`

	// OutboxInterval and OutboxBatchSize pace the relay that publishes
	// committed compliance events.
	OutboxInterval  time.Duration `env:"OUTBOX_RELAY_INTERVAL" envDefault:"1s"`
	OutboxBatchSize int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// SessionHoursCap bounds the hours credited for a single check-in session.
	SessionHoursCap float64 `env:"SESSION_HOURS_CAP" envDefault:"12"`

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig selects the Postgres store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL          string        `env:"DATABASE_URL"`
	MaxOpenConns int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife  time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig backs the hours leaderboard. An empty URL selects the
// in-memory leaderboard.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig backs the audit stream. No brokers selects the log publisher.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"volunteerhub.audit"`
	ClientID   string   `env:"KAFKA_CLIENT_ID" envDefault:"volunteerhub"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	if c.SessionHoursCap <= 0 {
		return fmt.Errorf("SESSION_HOURS_CAP must be positive, got %v", c.SessionHoursCap)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("TX_TIMEOUT must be positive, got %s", c.TxTimeout)
	}
	if c.OutboxInterval <= 0 {
		return fmt.Errorf("OUTBOX_RELAY_INTERVAL must be positive, got %s", c.OutboxInterval)
	}
	if c.JWTSigningKey == "" {
		return errors.New("JWT_SIGNING_KEY is required")
	}
	return nil
}
