// Package config loads and validates the settings of the ledger API and the
// funding processor.
package config

import (
	"errors"
	"strings"
	"time"
)

// Store backends selectable through LEDGER_STORE
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the complete application configuration
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig

	// SourceFile is the file that was read, empty when only defaults and
	// the environment apply.
	SourceFile string
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or text
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// AuthConfig configures verification of caller bearer tokens
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string // Optional, checked against the iss claim when set
}

// LedgerConfig tunes the ledger core
type LedgerConfig struct {
	Store                    string        // postgres or memory
	FundMaxAttempts          int           // Attempts per funding before reporting a conflict
	FundRetryBackoff         time.Duration // Base wait between funding attempts
	AccountNumberMaxAttempts int           // Draws per account creation before giving up
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	FundingTopic      string // Inbound funding requests
	EventsTopic       string // Outbound account events
	DLQTopic          string // Rejected funding requests
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64

	// MaxDeliveryAttempts caps handling attempts of one message before it
	// is dead-lettered. Zero retries forever.
	MaxDeliveryAttempts int
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox relay configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Publish attempts before a message is parked as failed
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// UsesPostgres reports whether the ledger runs against PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.Ledger.Store == StorePostgres
}

// validate performs validation of all configuration values. Postgres settings
// are only checked when the postgres store is selected.
func (c *Config) validate() error {
	var validationErrors []string
	check := func(ok bool, msg string) {
		if !ok {
			validationErrors = append(validationErrors, msg)
		}
	}

	check(c.Server.Port > 0, "SERVER_PORT must be greater than 0")
	check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	check(c.Server.ReadTimeout > 0, "SERVER_READ_TIMEOUT must be greater than 0")
	check(c.Server.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT must be greater than 0")
	check(c.Server.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT must be greater than 0")

	check(c.Auth.JWTSecret != "", "AUTH_JWT_SECRET is required")

	check(c.Ledger.Store == StorePostgres || c.Ledger.Store == StoreMemory,
		"LEDGER_STORE must be one of postgres, memory")
	check(c.Ledger.FundMaxAttempts > 0, "LEDGER_FUND_MAX_ATTEMPTS must be greater than 0")
	check(c.Ledger.FundRetryBackoff >= 0, "LEDGER_FUND_RETRY_BACKOFF must not be negative")
	check(c.Ledger.AccountNumberMaxAttempts > 0, "LEDGER_ACCOUNT_NUMBER_MAX_ATTEMPTS must be greater than 0")

	check(c.Kafka.Brokers != "", "KAFKA_BROKERS is required")
	check(c.Kafka.FundingTopic != "", "KAFKA_FUNDING_TOPIC is required")
	check(c.Kafka.EventsTopic != "", "KAFKA_EVENTS_TOPIC is required")
	check(c.Kafka.DLQTopic != "", "KAFKA_DLQ_TOPIC is required")
	check(c.Kafka.ConsumerGroup != "", "KAFKA_CONSUMER_GROUP is required")
	check(c.Kafka.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	check(c.Kafka.MaxBytes > 0, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	check(c.Kafka.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	check(c.Kafka.MaxDeliveryAttempts >= 0, "KAFKA_CONSUMER_MAX_DELIVERY_ATTEMPTS must not be negative")

	if c.UsesPostgres() {
		check(c.Postgres.URL != "", "POSTGRES_URL is required")
		check(c.Postgres.MaxConns > 0, "POSTGRES_MAX_CONNS must be greater than 0")
		check(c.Postgres.MinConns > 0, "POSTGRES_MIN_CONNS must be greater than 0")
		check(c.Postgres.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		check(c.Postgres.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	check(c.MongoDB.URI != "", "MONGO_URI is required")
	check(c.MongoDB.Database != "", "MONGO_DATABASE is required")
	check(c.MongoDB.Timeout > 0, "MONGO_TIMEOUT must be greater than 0")
	check(c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE must be greater than 0")
	check(c.MongoDB.MinPoolSize > 0, "MONGO_MIN_POOL_SIZE must be greater than 0")
	check(c.MongoDB.MaxConnIdleTime > 0, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")

	check(c.Outbox.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	check(c.Outbox.BatchSize > 0, "OUTBOX_BATCH_SIZE must be greater than 0")
	check(c.Outbox.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")

	check(c.WorkerPool.Size > 0, "WORKER_POOL_SIZE must be greater than 0")

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
