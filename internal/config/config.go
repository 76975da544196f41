package config

import (
	"time"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/usage"
)

// Config represents the complete application configuration, assembled from
// three layers: built-in defaults, the user config file
// (~/.config/industrylens/config.yaml) and INDUSTRYLENS_* environment
// variables plus command-line overrides.
type Config struct {
	AILink  ailink.Config `mapstructure:"ailink"`
	Session SessionConfig `mapstructure:"session"`
	Models  []ModelConfig `mapstructure:"models" validate:"required,min=1,dive"`
	Input   InputConfig   `mapstructure:"input"`
	Usage   UsageConfig   `mapstructure:"usage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SessionConfig holds the generation parameters chosen once per session.
type SessionConfig struct {
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gte=1"`

	// Dispatch is "concurrent" (default) or "sequential".
	Dispatch string `mapstructure:"dispatch" validate:"omitempty,oneof=concurrent sequential"`
}

// ModelConfig is one entry of the selectable model catalog.
type ModelConfig struct {
	ID    string `mapstructure:"id" validate:"required"`
	Label string `mapstructure:"label"`

	// MaxTokens is the ceiling a session may request for this model.
	MaxTokens int         `mapstructure:"max_tokens" validate:"gte=1"`
	Pricing   usage.Price `mapstructure:"pricing"`
}

// InputConfig bounds user-provided input.
type InputConfig struct {
	MaxTitleLength int `mapstructure:"max_title_length" validate:"gte=1"`
}

// UsageConfig controls usage accounting.
type UsageConfig struct {
	// EstimateMissing counts tokens locally when the provider omits usage.
	EstimateMissing bool `mapstructure:"estimate_missing"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error"`

	// Profile selects the logging complexity level (simple, structured)
	Profile string `mapstructure:"profile"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Model returns the catalog entry for id.
func (c *Config) Model(id string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// Pricing returns the per-model prices of the catalog.
func (c *Config) Pricing() usage.Pricing {
	pricing := make(usage.Pricing, len(c.Models))
	for _, m := range c.Models {
		pricing[m.ID] = m.Pricing
	}
	return pricing
}

// SessionParams converts the session section for the gateway.
func (c *Config) SessionParams() (ailink.Session, error) {
	dispatch, err := ailink.ParseDispatch(c.Session.Dispatch)
	if err != nil {
		return ailink.Session{}, err
	}
	return ailink.Session{
		Model:       c.Session.Model,
		Temperature: c.Session.Temperature,
		MaxTokens:   c.Session.MaxTokens,
		Dispatch:    dispatch,
	}, nil
}
