// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"dlpgate/internal/policy"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Audit   AuditConfig
	Storage StorageConfig
	Cache   CacheConfig
	Policy  PolicyConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string
	APIKey    string
	BodyLimit string
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Enabled          bool
	Root             string
	BufferSize       int
	FlushInterval    time.Duration
	WriteTimeout     time.Duration
	RetentionDays    int
	AlertOnSensitive bool
	AlertWebhookURL  string
}

// StorageConfig holds audit storage backend configuration
type StorageConfig struct {
	Type       string
	SQLitePath string
	PGURL      string
	PGMaxConns int
	MongoURL   string
	MongoDB    string
}

// CacheConfig holds screening cache configuration
type CacheConfig struct {
	// Backend is "none", "local" or "redis"
	Backend    string
	RedisURL   string
	TTL        time.Duration
	MaxEntries int
}

// PolicyConfig points at the enterprise policy document
type PolicyConfig struct {
	Path string
}

// LoggingConfig holds process log configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from .env file and environment variables.
// Environment variables win over the .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // .env file is optional

	viper.SetDefault("DLPGATE_PORT", "8080")
	viper.SetDefault("DLPGATE_BODY_LIMIT", "1M")
	viper.SetDefault("DLPGATE_AUDIT_ENABLED", true)
	viper.SetDefault("DLPGATE_AUDIT_ROOT", "data/audit")
	viper.SetDefault("DLPGATE_AUDIT_BUFFER_SIZE", 1000)
	viper.SetDefault("DLPGATE_AUDIT_FLUSH_INTERVAL", "5s")
	viper.SetDefault("DLPGATE_AUDIT_WRITE_TIMEOUT", "2s")
	viper.SetDefault("DLPGATE_AUDIT_RETENTION_DAYS", 730)
	viper.SetDefault("DLPGATE_AUDIT_ALERT_ON_SENSITIVE", true)
	viper.SetDefault("DLPGATE_STORAGE_TYPE", "file")
	viper.SetDefault("DLPGATE_SQLITE_PATH", "data/dlpgate.db")
	viper.SetDefault("DLPGATE_PG_MAX_CONNS", 10)
	viper.SetDefault("DLPGATE_MONGO_DATABASE", "dlpgate")
	viper.SetDefault("DLPGATE_CACHE_BACKEND", "local")
	viper.SetDefault("DLPGATE_CACHE_TTL", "1h")
	viper.SetDefault("DLPGATE_CACHE_MAX_ENTRIES", 4096)
	viper.SetDefault("DLPGATE_LOG_LEVEL", "info")
	viper.SetDefault("DLPGATE_LOG_FORMAT", "text")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("DLPGATE_PORT"),
			APIKey:    viper.GetString("DLPGATE_API_KEY"),
			BodyLimit: viper.GetString("DLPGATE_BODY_LIMIT"),
		},
		Audit: AuditConfig{
			Enabled:          viper.GetBool("DLPGATE_AUDIT_ENABLED"),
			Root:             viper.GetString("DLPGATE_AUDIT_ROOT"),
			BufferSize:       viper.GetInt("DLPGATE_AUDIT_BUFFER_SIZE"),
			FlushInterval:    viper.GetDuration("DLPGATE_AUDIT_FLUSH_INTERVAL"),
			WriteTimeout:     viper.GetDuration("DLPGATE_AUDIT_WRITE_TIMEOUT"),
			RetentionDays:    viper.GetInt("DLPGATE_AUDIT_RETENTION_DAYS"),
			AlertOnSensitive: viper.GetBool("DLPGATE_AUDIT_ALERT_ON_SENSITIVE"),
			AlertWebhookURL:  viper.GetString("DLPGATE_ALERT_WEBHOOK_URL"),
		},
		Storage: StorageConfig{
			Type:       viper.GetString("DLPGATE_STORAGE_TYPE"),
			SQLitePath: viper.GetString("DLPGATE_SQLITE_PATH"),
			PGURL:      viper.GetString("DLPGATE_PG_URL"),
			PGMaxConns: viper.GetInt("DLPGATE_PG_MAX_CONNS"),
			MongoURL:   viper.GetString("DLPGATE_MONGO_URL"),
			MongoDB:    viper.GetString("DLPGATE_MONGO_DATABASE"),
		},
		Cache: CacheConfig{
			Backend:    viper.GetString("DLPGATE_CACHE_BACKEND"),
			RedisURL:   viper.GetString("DLPGATE_REDIS_URL"),
			TTL:        viper.GetDuration("DLPGATE_CACHE_TTL"),
			MaxEntries: viper.GetInt("DLPGATE_CACHE_MAX_ENTRIES"),
		},
		Policy: PolicyConfig{
			Path: viper.GetString("DLPGATE_POLICY_PATH"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("DLPGATE_LOG_LEVEL"),
			Format: viper.GetString("DLPGATE_LOG_FORMAT"),
		},
	}

	return cfg, nil
}

// LoadPolicy resolves the enterprise policy: the YAML document named by the
// configuration when present, the built-in default otherwise.
func (c *Config) LoadPolicy() (policy.EnterprisePolicy, error) {
	if c.Policy.Path == "" {
		return policy.Default(), nil
	}

	data, err := os.ReadFile(c.Policy.Path)
	if err != nil {
		return policy.EnterprisePolicy{}, fmt.Errorf("failed to read policy file %s: %w", c.Policy.Path, err)
	}

	return policy.FromYAML(data)
}
