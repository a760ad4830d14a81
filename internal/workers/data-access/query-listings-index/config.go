// internal/workers/data-access/query-listings-index/config.go
package querylistingsindex

import (
	"time"

	"listings-workers/internal/workers/data-access/query-listings-index/queries"
)

type Config struct {
	Timeout time.Duration
	Index   string
	// ScanLimit caps the candidates a location query collects before the
	// strict location filter runs. Zero means queries.DefaultScanLimit.
	ScanLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		Index:     "listings",
		ScanLimit: queries.DefaultScanLimit,
	}
}
