// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, and validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional per-environment overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values and string lists.
// An unset variable expands to empty; list entries that end up empty are dropped.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		switch val := v.Get(key).(type) {
		case string:
			if hasPlaceholder(val) {
				v.Set(key, os.ExpandEnv(val))
			}
		case []interface{}:
			out := make([]string, 0, len(val))
			changed := false
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					continue
				}
				if hasPlaceholder(s) {
					s = os.ExpandEnv(s)
					changed = true
				}
				if s != "" {
					out = append(out, s)
				}
			}
			if changed {
				v.Set(key, out)
			}
		}
	}
}

func hasPlaceholder(s string) bool {
	return strings.Contains(s, "${") || (strings.HasPrefix(s, "$") && len(s) > 1)
}

// overrideEmptyConfig fills values commonly supplied as plain env vars.
func overrideEmptyConfig(cfg *Config) {
	if cfg.ListingsAPI.BaseURL == "" {
		if val := os.Getenv("LISTINGS_API_BASE_URL"); val != "" {
			cfg.ListingsAPI.BaseURL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "listings-workers"
	}
	if cfg.App.HealthPort == 0 {
		cfg.App.HealthPort = 8080
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.ListingsAPI.Timeout == 0 {
		cfg.ListingsAPI.Timeout = 10000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "listings"
	}

	if cfg.Search.ListingsPath == "" {
		cfg.Search.ListingsPath = "/listings"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 100
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.ListingsAPI.BaseURL == "" {
		return fmt.Errorf("listings_api.base_url is required")
	}
	if !strings.HasPrefix(cfg.ListingsAPI.BaseURL, "http://") && !strings.HasPrefix(cfg.ListingsAPI.BaseURL, "https://") {
		return fmt.Errorf("listings_api.base_url must be an http(s) URL, got %q", cfg.ListingsAPI.BaseURL)
	}

	if cfg.ListingsAPI.CacheTTL < 0 {
		return fmt.Errorf("listings_api.cache_ttl must not be negative")
	}

	if cfg.Database.Postgres.Enabled() {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when host is set")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when host is set")
		}
	}

	if !strings.HasPrefix(cfg.Search.ListingsPath, "/") {
		return fmt.Errorf("search.listings_path must start with '/'")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
