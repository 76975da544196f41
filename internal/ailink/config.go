package ailink

import "time"

// Config defines the generation provider connection.
type Config struct {
	// Provider selects the driver. Only "openai" (and OpenAI-compatible
	// endpoints through BaseURL) is supported.
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`

	// DefaultTimeout bounds each provider request. Zero means no client-side
	// timeout.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`

	// PromptsDir layers operator prompts over the built-in set, by slug.
	PromptsDir string `mapstructure:"prompts_dir"`
}
