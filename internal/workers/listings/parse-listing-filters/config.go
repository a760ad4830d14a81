// internal/workers/listings/parse-listing-filters/config.go
package parselistingfilters

import "time"

type Config struct {
	Timeout   time.Duration
	MaxRating float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		MaxRating: 5,
	}
}
