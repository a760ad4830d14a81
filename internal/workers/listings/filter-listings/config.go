// internal/workers/listings/filter-listings/config.go
package filterlistings

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
