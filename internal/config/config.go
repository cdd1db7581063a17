package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the resolved application configuration
type Config struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Messaging     MessagingConfig     `yaml:"messaging"`
	Storage       StorageConfig       `yaml:"storage"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	CORS          CORSConfig          `yaml:"cors"`
}

// AppConfig holds server-level settings
type AppConfig struct {
	Env  string `yaml:"env"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the Postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig holds token signing settings (TTLs in minutes)
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"`
	RefreshIn int    `yaml:"refresh_in"`
}

// MessagingConfig holds the conversation encryption settings.
// Secret is the server-wide key-derivation secret; it must be set or the
// process refuses to start.
type MessagingConfig struct {
	Secret              string `yaml:"secret"`
	ConversationTTLDays int    `yaml:"conversation_ttl_days"`
	AdTTLDays           int    `yaml:"ad_ttl_days"`
	PurgeGraceDays      int    `yaml:"purge_grace_days"`
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// ElasticsearchConfig holds optional search settings
type ElasticsearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// Load reads a YAML config file, expanding ${ENV_VAR} references
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "local"
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.JWT.ExpiresIn == 0 {
		c.JWT.ExpiresIn = 60
	}
	if c.JWT.RefreshIn == 0 {
		c.JWT.RefreshIn = 60 * 24 * 14
	}
	if c.Messaging.ConversationTTLDays == 0 {
		c.Messaging.ConversationTTLDays = 30
	}
	if c.Messaging.AdTTLDays == 0 {
		c.Messaging.AdTTLDays = 60
	}
	if c.Messaging.PurgeGraceDays == 0 {
		c.Messaging.PurgeGraceDays = 5
	}
}

// Validate fails fast on configuration the service cannot run without.
// An empty messaging secret would otherwise only surface on the first
// encrypt call.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.Messaging.Secret == "" {
		return errors.New("config: messaging.secret is required")
	}
	return nil
}

// IsDevelopment reports whether the app runs in a dev-like environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "local" || c.App.Env == "dev" || c.App.Env == "development"
}
