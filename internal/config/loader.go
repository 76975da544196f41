// Package config provides centralized configuration management for
// industrylens. Values are layered with viper: built-in defaults, an optional
// YAML config file, then INDUSTRYLENS_* environment variables and explicit
// overrides (command-line flags).
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/industrylens/industrylens/internal/appid"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex

	validate = validator.New()
)

// Default catalog. Prices are USD per 1K tokens.
var defaultModels = []map[string]any{
	{
		"id":         "gpt-3.5-turbo",
		"label":      "GPT-3.5 Turbo",
		"max_tokens": 4096,
		"pricing":    map[string]any{"prompt": 0.0015, "completion": 0.002},
	},
	{
		"id":         "gpt-3.5-turbo-16k",
		"label":      "GPT-3.5 Turbo 16K",
		"max_tokens": 16384,
		"pricing":    map[string]any{"prompt": 0.003, "completion": 0.004},
	},
	{
		"id":         "gpt-4",
		"label":      "GPT-4",
		"max_tokens": 8192,
		"pricing":    map[string]any{"prompt": 0.03, "completion": 0.06},
	},
}

// SetDefaults registers default values on v. Every key that can be
// overridden from the environment needs a default so viper can resolve it.
func SetDefaults(v *viper.Viper) {
	// AILink defaults
	v.SetDefault("ailink.provider", "openai")
	v.SetDefault("ailink.base_url", "")
	v.SetDefault("ailink.api_key", "")
	v.SetDefault("ailink.default_timeout", "60s")
	v.SetDefault("ailink.prompts_dir", "")

	// Session defaults
	v.SetDefault("session.model", "gpt-3.5-turbo")
	v.SetDefault("session.temperature", 1.0)
	v.SetDefault("session.max_tokens", 2000)
	v.SetDefault("session.dispatch", "concurrent")

	v.SetDefault("models", defaultModels)

	v.SetDefault("input.max_title_length", 25)
	v.SetDefault("usage.estimate_missing", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

// BindEnv wires environment variables into v. Nested keys map to
// PREFIX_SECTION_KEY (INDUSTRYLENS_SESSION_MODEL). The API key also falls
// back to OPENAI_API_KEY.
func BindEnv(v *viper.Viper, identity appid.Identity) error {
	v.SetEnvPrefix(identity.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("ailink.api_key", identity.EnvKey("ailink_api_key"), "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("bind api key env: %w", err)
	}
	if err := v.BindEnv("logging.level", identity.EnvKey("log_level"), identity.EnvKey("logging_level")); err != nil {
		return fmt.Errorf("bind log level env: %w", err)
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings.
func New(identity appid.Identity) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if err := BindEnv(v, identity); err != nil {
		return nil, err
	}
	return v, nil
}

// Load decodes and validates the settings held by v. Later overrides win
// over earlier ones and over every other layer. The result becomes the
// process-wide config returned by GetConfig.
func Load(v *viper.Viper, overrides ...map[string]any) (*Config, error) {
	for _, layer := range overrides {
		for key, value := range layer {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate checks field ranges and the session against the model catalog.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	model, ok := c.Model(c.Session.Model)
	if !ok {
		return fmt.Errorf("invalid config: model %q is not in the catalog", c.Session.Model)
	}
	if c.Session.MaxTokens > model.MaxTokens {
		return fmt.Errorf("invalid config: max_tokens %d exceeds the %d token ceiling of %s",
			c.Session.MaxTokens, model.MaxTokens, model.ID)
	}

	seen := make(map[string]struct{}, len(c.Models))
	for _, m := range c.Models {
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("invalid config: duplicate model %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns the XDG-compliant config directory for the app.
func DefaultConfigDir(identity appid.Identity) string {
	return gfconfig.GetAppConfigDir(identity.ConfigName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath(identity appid.Identity) string {
	configDir := DefaultConfigDir(identity)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
