package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	Security      SecurityConfig      `json:"security"`
	Search        SearchConfig        `json:"search"`
	AWS           AWSConfig           `json:"aws"`
	Badges        BadgesConfig        `json:"badges"`
	Payments      PaymentsConfig      `json:"payments"`
	Notifications NotificationsConfig `json:"notifications"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// SecurityConfig holds auth secrets
type SecurityConfig struct {
	JWTSecret   string        `json:"jwt_secret"`
	TokenExpiry time.Duration `json:"token_expiry"`
}

// SearchConfig holds the Elasticsearch connection settings. Listing search
// falls back to Postgres when no address is configured.
type SearchConfig struct {
	Addresses []string `json:"addresses"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Index     string   `json:"index"`
}

// AWSConfig holds region and per-service settings
type AWSConfig struct {
	Region       string `json:"region"`
	UploadBucket string `json:"upload_bucket"`
	SenderEmail  string `json:"sender_email"`
}

// BadgesConfig controls the badge engine and its scheduled sweep
type BadgesConfig struct {
	SweepCron      string        `json:"sweep_cron"`
	SweepParallel  int           `json:"sweep_parallel"`
	CohortCacheTTL time.Duration `json:"cohort_cache_ttl"`
}

// PaymentsConfig - the payment platform itself is external; only the
// webhook shared secret lives here.
type PaymentsConfig struct {
	ProviderURL    string `json:"provider_url"`
	ProviderAPIKey string `json:"provider_api_key"`
	WebhookSecret  string `json:"webhook_secret"`
}

// NotificationsConfig toggles delivery channels
type NotificationsConfig struct {
	EmailEnabled bool `json:"email_enabled"`
	SMSEnabled   bool `json:"sms_enabled"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "listinghub",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
		},
		Search: SearchConfig{
			Index: "listings",
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Badges: BadgesConfig{
			SweepCron:      "0 0 3 * * *",
			SweepParallel:  8,
			CohortCacheTTL: 5 * time.Minute,
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("DATABASE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Database.Port = p
		}
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		config.Database.User = user
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if name := os.Getenv("DATABASE_DBNAME"); name != "" {
		config.Database.DBName = name
	}
	if mode := os.Getenv("DATABASE_SSLMODE"); mode != "" {
		config.Database.SSLMode = mode
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if addr := os.Getenv("ELASTICSEARCH_URL"); addr != "" {
		config.Search.Addresses = []string{addr}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if bucket := os.Getenv("UPLOAD_BUCKET"); bucket != "" {
		config.AWS.UploadBucket = bucket
	}
	if sender := os.Getenv("SENDER_EMAIL"); sender != "" {
		config.AWS.SenderEmail = sender
	}
	if url := os.Getenv("PAYMENT_PROVIDER_URL"); url != "" {
		config.Payments.ProviderURL = url
	}
	if key := os.Getenv("PAYMENT_PROVIDER_API_KEY"); key != "" {
		config.Payments.ProviderAPIKey = key
	}
	if secret := os.Getenv("PAYMENT_WEBHOOK_SECRET"); secret != "" {
		config.Payments.WebhookSecret = secret
	}
	if spec := os.Getenv("BADGE_SWEEP_CRON"); spec != "" {
		config.Badges.SweepCron = spec
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// DSN builds the Postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	return nil
}
