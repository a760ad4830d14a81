// internal/workers/analytics/record-search-event/config.go
package recordsearchevent

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
