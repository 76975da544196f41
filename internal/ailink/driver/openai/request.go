package openai

import (
	"fmt"
	"strings"

	"github.com/industrylens/industrylens/internal/ailink/content"
	"github.com/industrylens/industrylens/internal/ailink/driver"
)

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildChatRequest(req *driver.Request) (*chatCompletionRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		for _, block := range msg.Content {
			if block.Type != content.ContentTypeText && block.Type != "" {
				return nil, fmt.Errorf("unsupported content type: %s", block.Type)
			}
		}
		messages = append(messages, chatMessage{Role: msg.Role, Content: content.JoinText(msg.Content)})
	}

	return &chatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, nil
}
