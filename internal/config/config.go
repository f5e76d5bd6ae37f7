package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Habits        HabitsConfig        `yaml:"habits"`
	Worker        WorkerConfig        `yaml:"worker"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"STRIDE_SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"STRIDE_SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"STRIDE_SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"STRIDE_SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"STRIDE_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"STRIDE_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"STRIDE_SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"STRIDE_DB_DSN"                env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns"     env:"STRIDE_DB_MAX_OPEN_CONNS"     env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"     env:"STRIDE_DB_MAX_IDLE_CONNS"     env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"  env:"STRIDE_DB_CONN_MAX_LIFETIME"  env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"STRIDE_DB_CONN_MAX_IDLE_TIME" env-default:"1m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"STRIDE_DB_AUTO_MIGRATE"       env-default:"false"`
}

// AuthConfig holds access-token validation settings. Token issuance is the
// identity service's job; this service only verifies.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"STRIDE_AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"STRIDE_AUTH_JWT_ISSUER" env-default:"stride"`
}

// HabitsConfig holds the habit engine knobs.
type HabitsConfig struct {
	// MilestoneThresholds is a comma-separated ascending list of streak
	// lengths whose crossing is reported on completion.
	MilestoneThresholds []int `yaml:"milestone_thresholds" env:"STRIDE_HABITS_MILESTONES" env-default:"3,7,14,30,60,100"`

	// ReminderLookahead is the default window for upcoming-reminder queries.
	ReminderLookahead time.Duration `yaml:"reminder_lookahead" env:"STRIDE_HABITS_REMINDER_LOOKAHEAD" env-default:"24h"`

	// CompletionRetries bounds the conflict retry loop on completion writes.
	CompletionRetries int `yaml:"completion_retries" env:"STRIDE_HABITS_COMPLETION_RETRIES" env-default:"3"`
}

// WorkerConfig holds reminder scan worker settings.
type WorkerConfig struct {
	ScanInterval     time.Duration `yaml:"scan_interval"     env:"STRIDE_WORKER_SCAN_INTERVAL"     env-default:"15m"`
	OperationTimeout time.Duration `yaml:"operation_timeout" env:"STRIDE_WORKER_OPERATION_TIMEOUT" env-default:"30s"`
}

// ObservabilityConfig holds OTLP export settings. Endpoint and headers follow
// the standard OTEL_* environment variables.
type ObservabilityConfig struct {
	Enabled     bool   `yaml:"enabled"      env:"STRIDE_OTEL_ENABLED"      env-default:"false"`
	ServiceName string `yaml:"service_name" env:"STRIDE_OTEL_SERVICE_NAME" env-default:"stride"`
}
