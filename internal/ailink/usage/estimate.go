package usage

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/industrylens/industrylens/internal/ailink/driver"
)

// fallbackEncodingModel selects cl100k_base, shared by the chat models.
const fallbackEncodingModel = "gpt-3.5-turbo"

// Estimator fills in usage for providers that omit it.
type Estimator interface {
	Estimate(model, prompt, completion string) (*driver.Usage, error)
}

// TokenEstimator counts tokens locally with tiktoken. The first use of an
// encoding fetches its BPE ranks, so it is opt-in.
type TokenEstimator struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewTokenEstimator returns an estimator with an empty encoding cache.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// Estimate counts prompt and completion tokens for model.
func (e *TokenEstimator) Estimate(model, prompt, completion string) (*driver.Usage, error) {
	enc, err := e.encoding(model)
	if err != nil {
		return nil, err
	}
	promptTokens := len(enc.Encode(prompt, nil, nil))
	completionTokens := len(enc.Encode(completion, nil, nil))
	return &driver.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}, nil
}

func (e *TokenEstimator) encoding(model string) (*tiktoken.Tiktoken, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encodings[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.EncodingForModel(fallbackEncodingModel)
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
	}
	e.encodings[model] = enc
	return enc, nil
}
