package ailink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/ailink/driver/openai"
)

// ErrMissingAPIKey is returned when no provider credential is configured.
var ErrMissingAPIKey = errors.New("provider api key is not configured")

// NewDriver builds the driver described by cfg.
func NewDriver(cfg Config) (driver.Driver, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, ErrMissingAPIKey
		}
		client := openai.NewClient(cfg.BaseURL, cfg.APIKey)
		client.Timeout = cfg.DefaultTimeout
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
