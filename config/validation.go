package config

import (
	"fmt"
	"net/url"
)

// Version is the SDK release version reported in the User-Agent header.
const Version = "0.1.0"

// Validate checks the resolved configuration for completeness and sane values.
func Validate(cfg *Config) error {
	if err := validateAPI(&cfg.API); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := validateRetry(&cfg.Retry); err != nil {
		return fmt.Errorf("retry config: %w", err)
	}

	return nil
}

func validateAPI(cfg *APIConfig) error {
	if cfg.Key == "" {
		return fmt.Errorf("api key is required")
	}

	if cfg.URL == "" {
		return fmt.Errorf("api url is required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q is not a valid absolute URL", cfg.URL)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}

	return nil
}

func validateRetry(cfg *RetryConfig) error {
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("retry max must not be negative")
	}

	if cfg.BaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}

	return nil
}
