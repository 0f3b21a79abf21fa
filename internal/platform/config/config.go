// Package config loads service configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"

	strs "carecompliance/pkg/platform/strings"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Blob      BlobConfig      `yaml:"blob"`
	Documents DocumentsConfig `yaml:"documents"`
	Checklist ChecklistConfig `yaml:"checklist"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Audit     AuditConfig     `yaml:"audit"`
	Seed      SeedConfig      `yaml:"seed"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// DatabaseConfig holds PostgreSQL settings. An empty DSN selects in-memory stores.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"15m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// RedisConfig holds Redis settings. An empty URL disables the scheduler lock.
type RedisConfig struct {
	URL          string        `yaml:"url"            env:"REDIS_URL"`
	PoolSize     int           `yaml:"pool_size"      env:"REDIS_POOL_SIZE"      env-default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"1"`
	DialTimeout  time.Duration `yaml:"dial_timeout"   env:"REDIS_DIAL_TIMEOUT"   env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"   env:"REDIS_READ_TIMEOUT"   env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout"  env:"REDIS_WRITE_TIMEOUT"  env-default:"3s"`
}

// KafkaConfig holds audit streaming settings. Empty brokers disable the Kafka sink.
type KafkaConfig struct {
	Brokers    string `yaml:"brokers"     env:"KAFKA_BROKERS"`
	AuditTopic string `yaml:"audit_topic" env:"KAFKA_AUDIT_TOPIC" env-default:"compliance.audit"`
	// Used only when the topic has to be created at startup.
	AuditPartitions   int32 `yaml:"audit_partitions"   env:"KAFKA_AUDIT_PARTITIONS"   env-default:"3"`
	ReplicationFactor int16 `yaml:"replication_factor" env:"KAFKA_REPLICATION_FACTOR" env-default:"1"`
}

// BrokerList splits the comma-separated broker string.
func (k KafkaConfig) BrokerList() []string {
	return strs.SplitList(k.Brokers)
}

// AuthConfig holds bearer token validation settings.
type AuthConfig struct {
	JWTSigningKey string `yaml:"jwt_signing_key" env:"AUTH_JWT_SIGNING_KEY" env-required:"true"`
	JWTIssuer     string `yaml:"jwt_issuer"      env:"AUTH_JWT_ISSUER"`
}

// EmailConfig holds the outbound email API settings.
type EmailConfig struct {
	BaseURL    string        `yaml:"base_url"    env:"EMAIL_BASE_URL"`
	APIKey     string        `yaml:"api_key"     env:"EMAIL_API_KEY"`
	From       string        `yaml:"from"        env:"EMAIL_FROM"        env-default:"compliance@localhost"`
	Timeout    time.Duration `yaml:"timeout"     env:"EMAIL_TIMEOUT"     env-default:"10s"`
	RetryCount int           `yaml:"retry_count" env:"EMAIL_RETRY_COUNT" env-default:"2"`
	PublicURL  string        `yaml:"public_url"  env:"EMAIL_PUBLIC_URL"  env-default:"http://localhost:8080"`
}

// BlobConfig holds the blob host settings used for uploads and downloads.
type BlobConfig struct {
	BaseURL     string        `yaml:"base_url"     env:"BLOB_BASE_URL"     env-default:"http://localhost:9000/files"`
	SigningKey  string        `yaml:"signing_key"  env:"BLOB_SIGNING_KEY"`
	DownloadTTL time.Duration `yaml:"download_ttl" env:"BLOB_DOWNLOAD_TTL" env-default:"15m"`
}

// DocumentsConfig holds upload validation limits.
type DocumentsConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"DOCUMENTS_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// ChecklistConfig holds guardian checklist settings.
type ChecklistConfig struct {
	LinkTTL time.Duration `yaml:"link_ttl" env:"CHECKLIST_LINK_TTL" env-default:"336h"`
}

// AlertsConfig holds the initial schedule used when no settings are stored yet.
type AlertsConfig struct {
	DefaultSchedule string        `yaml:"default_schedule" env:"ALERTS_DEFAULT_SCHEDULE" env-default:"0 6 * * *"`
	LockTTL         time.Duration `yaml:"lock_ttl"         env:"ALERTS_LOCK_TTL"         env-default:"10m"`
	RunTimeout      time.Duration `yaml:"run_timeout"      env:"ALERTS_RUN_TIMEOUT"      env-default:"5m"`
}

// AuditConfig holds audit buffering settings.
type AuditConfig struct {
	BufferSize int `yaml:"buffer_size" env:"AUDIT_BUFFER_SIZE" env-default:"1024"`
}

// SeedConfig selects reference data loaded at startup. Path wins over Demo.
type SeedConfig struct {
	Path string `yaml:"path" env:"SEED_PATH"`
	Demo bool   `yaml:"demo" env:"SEED_DEMO" env-default:"false"`
}

// RateLimitConfig bounds unauthenticated guardian traffic per client address.
type RateLimitConfig struct {
	PublicRequests int           `yaml:"public_requests" env:"RATE_LIMIT_PUBLIC_REQUESTS" env-default:"30"`
	PublicWindow   time.Duration `yaml:"public_window"   env:"RATE_LIMIT_PUBLIC_WINDOW"   env-default:"1m"`
	Disabled       bool          `yaml:"disabled"        env:"RATE_LIMIT_DISABLED"        env-default:"false"`
}

// Load reads configuration from CONFIG_PATH (fallback ./config.yaml) and the
// environment. Priority: ENV > YAML > defaults.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	if c.Documents.MaxUploadBytes <= 0 {
		return fmt.Errorf("documents.max_upload_bytes must be positive")
	}
	if c.Checklist.LinkTTL <= 0 {
		return fmt.Errorf("checklist.link_ttl must be positive")
	}
	if _, err := cron.ParseStandard(c.Alerts.DefaultSchedule); err != nil {
		return fmt.Errorf("alerts.default_schedule: %w", err)
	}
	if !c.RateLimit.Disabled && (c.RateLimit.PublicRequests <= 0 || c.RateLimit.PublicWindow <= 0) {
		return fmt.Errorf("rate_limit.public_requests and rate_limit.public_window must be positive")
	}
	if c.Email.BaseURL != "" && c.Email.APIKey == "" {
		return fmt.Errorf("email.api_key is required when email.base_url is set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text")
	}
	return nil
}
