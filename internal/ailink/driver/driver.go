package driver

import (
	"context"

	"github.com/industrylens/industrylens/internal/ailink/content"
)

// Driver defines the interface for chat-completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "openai").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsStreaming bool
	SupportedModels   []string
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string
	Messages    []content.Message
	Temperature *float64
	MaxTokens   *int
	PromptSlug  string
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content      []content.ContentBlock
	FinishReason string
	Usage        *Usage
}

// Text returns the concatenated text content of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return content.JoinText(r.Content)
}
