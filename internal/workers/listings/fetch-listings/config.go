// internal/workers/listings/fetch-listings/config.go
package fetchlistings

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 15 * time.Second}
}
