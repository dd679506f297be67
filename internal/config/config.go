// Package config loads and validates the eval-analytics service configuration.
package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "eval-analytics"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8093
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "eval_analytics"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeM = 5
	defaultOSEndpoint      = "https://localhost:9200"
	defaultOSUsername      = "admin"
	defaultOSMaxRetries    = 3
	defaultOSTimeoutSec    = 30
	defaultUsageIndex      = "ai_usage_metrics"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	maxPort                = 65535
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"EVAL_ANALYTICS_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"           yaml:"debug"`
}

// OpenSearchConfig holds search backend configuration.
type OpenSearchConfig struct {
	Endpoint        string        `env:"OPENSEARCH_ENDPOINT" yaml:"endpoint"`
	Username        string        `env:"OPENSEARCH_USERNAME" yaml:"username"`
	Secret          string        `env:"OPENSEARCH_SECRET"   yaml:"secret"`
	InsecureSkipTLS bool          `env:"OPENSEARCH_INSECURE" yaml:"insecure_skip_tls"`
	MaxRetries      int           `yaml:"max_retries"`
	Timeout         time.Duration `yaml:"timeout"`
	UsageIndex      string        `env:"AI_USAGE_INDEX" yaml:"usage_metrics_index"`
}

// DatabaseConfig holds the Postgres metadata store configuration.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_EVAL_ANALYTICS_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_EVAL_ANALYTICS_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_EVAL_ANALYTICS_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_EVAL_ANALYTICS_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_EVAL_ANALYTICS_DB"       yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
	Output string `yaml:"output"`
}

// ValidationError describes a configuration field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Load loads configuration from a YAML file with env overrides and defaults.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setOpenSearchDefaults(&cfg.OpenSearch)
	setDatabaseDefaults(&cfg.Database)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setOpenSearchDefaults(o *OpenSearchConfig) {
	if o.Endpoint == "" {
		o.Endpoint = defaultOSEndpoint
	}
	if o.Username == "" {
		o.Username = defaultOSUsername
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultOSMaxRetries
	}
	if o.Timeout == 0 {
		o.Timeout = defaultOSTimeoutSec * time.Second
	}
	if o.UsageIndex == "" {
		o.UsageIndex = defaultUsageIndex
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeM * time.Minute
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > maxPort {
		return &ValidationError{Field: "service.port", Message: "must be between 1 and 65535"}
	}
	if c.OpenSearch.Endpoint == "" {
		return &ValidationError{Field: "opensearch.endpoint", Message: "is required"}
	}
	if c.OpenSearch.UsageIndex == "" {
		return &ValidationError{Field: "opensearch.usage_metrics_index", Message: "is required"}
	}
	if c.Database.Host == "" {
		return &ValidationError{Field: "database.host", Message: "is required"}
	}
	return nil
}
