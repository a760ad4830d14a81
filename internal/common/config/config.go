// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	ListingsAPI   ListingsAPIConfig       `mapstructure:"listings_api"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Search        SearchConfig            `mapstructure:"search"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HealthPort  int    `mapstructure:"health_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// ListingsAPIConfig points at the catalog REST service that serves /listings.
type ListingsAPIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, 0 disables the response cache
}

// TrimmedBaseURL returns the base URL without a trailing slash.
func (l ListingsAPIConfig) TrimmedBaseURL() string {
	return strings.TrimRight(l.BaseURL, "/")
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a postgres host was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL, kept for older config files
	Index     string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// Enabled reports whether any elasticsearch endpoint was configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// SearchConfig tunes the listing search pipeline.
type SearchConfig struct {
	ListingsPath string `mapstructure:"listings_path"`
	MaxResults   int    `mapstructure:"max_results"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig controls the otel providers.
type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// RegistryConfig locates the activity registry file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
