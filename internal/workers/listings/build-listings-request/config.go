// internal/workers/listings/build-listings-request/config.go
package buildlistingsrequest

import "time"

type Config struct {
	Timeout      time.Duration
	ListingsPath string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		ListingsPath: "/listings",
	}
}
