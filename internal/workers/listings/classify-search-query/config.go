// internal/workers/listings/classify-search-query/config.go
package classifysearchquery

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
