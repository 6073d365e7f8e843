package config

import (
	"fmt"
	"time"
)

// RateLimitConfig holds the token-bucket parameters shared by every
// per-user, per-resource limiter (see internal/ratelimit).
type RateLimitConfig struct {
	Capacity     int           `mapstructure:"capacity" env:"RATE_LIMIT_CAPACITY" default:"100"`
	RefillPeriod time.Duration `mapstructure:"refill_period" env:"RATE_LIMIT_REFILL_PERIOD" default:"1h"`
}

// Validate validates rate limit configuration.
func (r *RateLimitConfig) Validate() error {
	if r.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if r.RefillPeriod <= 0 {
		return fmt.Errorf("refill period must be positive")
	}
	return nil
}
