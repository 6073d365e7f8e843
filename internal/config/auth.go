package config

import (
	"fmt"
	"time"
)

// AuthConfig holds JWT bearer authentication configuration.
type AuthConfig struct {
	JWKSURL             string        `mapstructure:"jwks_url" env:"AUTH_JWKS_URL"`
	JWKSRefreshInterval time.Duration `mapstructure:"jwks_refresh_interval" env:"AUTH_JWKS_REFRESH_INTERVAL" default:"15m"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout" env:"AUTH_HTTP_TIMEOUT" default:"5s"`
}

// Validate validates auth configuration.
func (a *AuthConfig) Validate() error {
	if a.JWKSURL == "" {
		return fmt.Errorf("jwks url is required")
	}
	if a.JWKSRefreshInterval <= 0 {
		return fmt.Errorf("jwks refresh interval must be positive")
	}
	if a.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	return nil
}
