package ailink

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Dispatch controls how a batch is sent to the provider.
type Dispatch string

const (
	// DispatchConcurrent issues every call of a batch at once.
	DispatchConcurrent Dispatch = "concurrent"
	// DispatchSequential issues calls one after another in input order.
	DispatchSequential Dispatch = "sequential"
)

// ParseDispatch resolves a config value. Empty means concurrent.
func ParseDispatch(value string) (Dispatch, error) {
	switch Dispatch(strings.ToLower(strings.TrimSpace(value))) {
	case "", DispatchConcurrent:
		return DispatchConcurrent, nil
	case DispatchSequential:
		return DispatchSequential, nil
	default:
		return "", fmt.Errorf("unknown dispatch mode %q", value)
	}
}

// Session holds the generation parameters chosen once per session and used
// for every call the service makes.
type Session struct {
	Model       string   `json:"model" validate:"required"`
	Temperature float64  `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int      `json:"max_tokens" validate:"gte=1"`
	Dispatch    Dispatch `json:"dispatch" validate:"omitempty,oneof=concurrent sequential"`
}

var sessionValidate = validator.New()

// Validate checks the parameter ranges.
func (s Session) Validate() error {
	if err := sessionValidate.Struct(s); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	return nil
}
