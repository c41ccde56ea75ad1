package config

import "time"

// Config is the resolved SDK configuration. It is immutable after Load and
// may be read concurrently by any number of in-flight calls.
type Config struct {
	API   APIConfig   `koanf:"api" json:"api" yaml:"api" toml:"api" mapstructure:"api"`
	Retry RetryConfig `koanf:"retry" json:"retry" yaml:"retry" toml:"retry" mapstructure:"retry"`
	Log   LogConfig   `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
}

// APIConfig holds the monitoring endpoint settings.
type APIConfig struct {
	URL string `koanf:"url" json:"url" yaml:"url" toml:"url" mapstructure:"url"`
	Key string `koanf:"key" json:"key" yaml:"key" toml:"key" mapstructure:"key"`
	// Timeout bounds a single attempt, not the whole retry loop.
	Timeout   time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout"`
	UserAgent string        `koanf:"useragent" json:"useragent" yaml:"useragent" toml:"useragent" mapstructure:"useragent"`
}

// RetryConfig holds the default retry policy applied to every call.
type RetryConfig struct {
	MaxRetries int           `koanf:"max" json:"max" yaml:"max" toml:"max" mapstructure:"max"`
	BaseDelay  time.Duration `koanf:"basedelay" json:"basedelay" yaml:"basedelay" toml:"basedelay" mapstructure:"basedelay"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
}
