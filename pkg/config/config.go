package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Graph    GraphConfig
	LLM      LLMConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meetnotes"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration. Leave Host empty to fall back to the
// in-memory call store.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:""`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// GraphConfig holds credentials and endpoints for the meeting platform's
// directory/communications API.
type GraphConfig struct {
	TenantID      string `envconfig:"GRAPH_TENANT_ID"`
	ClientID      string `envconfig:"GRAPH_CLIENT_ID"`
	ClientSecret  string `envconfig:"GRAPH_CLIENT_SECRET"`
	BaseURL       string `envconfig:"GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`
	TokenURL      string `envconfig:"GRAPH_TOKEN_URL" default:""`
	MeetingDomain string `envconfig:"GRAPH_MEETING_DOMAIN" default:"teams.microsoft.com"`
	ClientState   string `envconfig:"GRAPH_WEBHOOK_CLIENT_STATE" default:""`
}

// LLMConfig holds configuration for the generation collaborator.
type LLMConfig struct {
	APIKey  string `envconfig:"LLM_API_KEY"`
	BaseURL string `envconfig:"LLM_API_URL" default:"https://api.openai.com"`
	Model   string `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
}

// JWTConfig holds service-token configuration for the manual API surface.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	Expiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
}

// StorageConfig holds object-storage configuration for transcript archiving.
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:""`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meetnotes-transcripts"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// PipelineConfig tunes the post-call pipeline.
type PipelineConfig struct {
	PollMaxAttempts int           `envconfig:"PIPELINE_POLL_MAX_ATTEMPTS" default:"20"`
	PollInterval    time.Duration `envconfig:"PIPELINE_POLL_INTERVAL" default:"30s"`
	Workers         int           `envconfig:"PIPELINE_WORKERS" default:"2"`
	MaxUploadBytes  int64         `envconfig:"PIPELINE_MAX_UPLOAD_BYTES" default:"52428800"` // 50 MB
	JobTick         time.Duration `envconfig:"PIPELINE_JOB_TICK" default:"10s"`
	CleanupTick     time.Duration `envconfig:"PIPELINE_CLEANUP_TICK" default:"10m"`
	ZombieCutoff    time.Duration `envconfig:"PIPELINE_ZOMBIE_CUTOFF" default:"30m"`
}

// Load loads configuration from the environment, reading a .env file first
// when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Graph.TenantID == "" {
		return fmt.Errorf("GRAPH_TENANT_ID is required")
	}
	if c.Graph.ClientID == "" {
		return fmt.Errorf("GRAPH_CLIENT_ID is required")
	}
	if c.Graph.ClientSecret == "" {
		return fmt.Errorf("GRAPH_CLIENT_SECRET is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
