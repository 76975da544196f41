package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/industrylens/industrylens/internal/ailink/driver"
)

// DefaultBaseURL is the public OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

const driverName = "openai"

// Client implements the OpenAI chat-completions driver via direct HTTP.
// Any OpenAI-compatible endpoint works by overriding BaseURL.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// Timeout bounds a single request. Zero leaves the caller's context in
	// charge.
	Timeout time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = DefaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return driverName
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsStreaming: false}
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	entry := driver.TraceEntry{
		Driver:      driverName,
		Endpoint:    endpoint,
		Model:       payload.Model,
		PromptSlug:  req.PromptSlug,
		RequestBody: body,
	}
	start := time.Now()
	defer func() {
		if driver.TracingEnabled() {
			entry.DurationMs = time.Since(start).Milliseconds()
			driver.Trace(entry)
		}
	}()

	resp, err := client.Do(httpReq)
	if err != nil {
		entry.Error = err.Error()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	entry.StatusCode = resp.StatusCode
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.Error = err.Error()
		return nil, fmt.Errorf("read response: %w", err)
	}
	if json.Valid(respBody) {
		entry.Response = respBody
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		perr := &driver.ProviderError{
			Provider:    driverName,
			StatusCode:  resp.StatusCode,
			Message:     errorMessage(respBody),
			RawResponse: respBody,
		}
		entry.Error = perr.Error()
		return nil, perr
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		entry.Error = err.Error()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return toDriverResponse(&parsed)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
