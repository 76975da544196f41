// Package usage aggregates token counts and cost across provider calls.
package usage

import (
	"sync"

	"github.com/industrylens/industrylens/internal/ailink/driver"
)

// Summary is the aggregate usage of one or more calls.
type Summary struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
}

// Add returns the field-wise sum of s and other.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		PromptTokens:     s.PromptTokens + other.PromptTokens,
		CompletionTokens: s.CompletionTokens + other.CompletionTokens,
		TotalTokens:      s.TotalTokens + other.TotalTokens,
		TotalCost:        s.TotalCost + other.TotalCost,
	}
}

// Price is the USD cost per 1K tokens.
type Price struct {
	Prompt     float64 `mapstructure:"prompt" json:"prompt" yaml:"prompt"`
	Completion float64 `mapstructure:"completion" json:"completion" yaml:"completion"`
}

// Pricing maps model IDs to prices. Unknown models cost nothing.
type Pricing map[string]Price

// Cost returns the USD cost of u on model.
func (p Pricing) Cost(model string, u driver.Usage) float64 {
	price, ok := p[model]
	if !ok {
		return 0
	}
	return float64(u.PromptTokens)/1000*price.Prompt + float64(u.CompletionTokens)/1000*price.Completion
}

// Meter accumulates usage from concurrent calls.
type Meter struct {
	pricing Pricing

	mu  sync.Mutex
	sum Summary
}

// NewMeter returns a meter pricing calls with pricing.
func NewMeter(pricing Pricing) *Meter {
	return &Meter{pricing: pricing}
}

// Record adds one call's usage. A nil usage records nothing.
func (m *Meter) Record(model string, u *driver.Usage) {
	if m == nil || u == nil {
		return
	}
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	delta := Summary{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      total,
		TotalCost:        m.pricing.Cost(model, *u),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sum = m.sum.Add(delta)
}

// Summary returns the usage recorded so far.
func (m *Meter) Summary() Summary {
	if m == nil {
		return Summary{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sum
}
