package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Telegram  Telegram  `yaml:"telegram"`
	Report    Report    `yaml:"report"`
	Database  Database  `yaml:"database"`
	Scheduler Scheduler `yaml:"scheduler"`
	S3        S3        `yaml:"s3"`
	Logging   Logging   `yaml:"logging"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Telegram holds Bot API gateway configuration
type Telegram struct {
	BaseURL  string `yaml:"base_url" env:"TELEGRAM_BASE_URL" env-default:"https://api.telegram.org"`
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	// OwnerID is the only account allowed to trigger analytics operations
	OwnerID string `yaml:"owner_id" env:"TELEGRAM_OWNER_ID"`
	// OwnerChatID is the owner's private chat, the default report destination
	OwnerChatID string `yaml:"owner_chat_id" env:"TELEGRAM_OWNER_CHAT_ID"`
}

// Report holds report rendering and delivery configuration
type Report struct {
	Language string `yaml:"language" env:"REPORT_LANGUAGE" env-default:"en"`
	// SendToChat posts the report into the analyzed chat instead of the
	// owner's private chat
	SendToChat bool `yaml:"send_to_chat" env:"REPORT_SEND_TO_CHAT" env-default:"false"`
}

// Database holds database configuration
type Database struct {
	// PostgreSQL
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Scheduler holds background sync scheduler configuration
type Scheduler struct {
	Enabled    bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"false"`
	Interval   time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"10m"`
	SyncAge    time.Duration `yaml:"sync_age" env:"SCHEDULER_SYNC_AGE" env-default:"30m"`
	BatchSize  int           `yaml:"batch_size" env:"SCHEDULER_BATCH_SIZE" env-default:"5"`
	MaxRetries int           `yaml:"max_retries" env:"SCHEDULER_MAX_RETRIES" env-default:"3"`
}

// S3 holds S3/MinIO storage configuration for history exports
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"exports"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/exports"`
}

// Logging holds log output configuration
type Logging struct {
	// Dir is where dated log files land; empty disables file logging
	Dir      string `yaml:"dir" env:"LOG_DIR" env-default:""`
	MaxFiles int    `yaml:"max_files" env:"LOG_MAX_FILES" env-default:"15"`
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
