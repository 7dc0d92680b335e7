package ai

import (
	"context"
	"strings"

	qa "github.com/elchin/deskhelp/internal/domain/qa"
	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
)

// ChatGPTCompleter adapts the chatgpt client to the QA domain.
type ChatGPTCompleter struct {
	client      *chatgpt.Client
	model       string
	temperature float32
}

// NewChatGPTCompleter constructs the adapter.
func NewChatGPTCompleter(client *chatgpt.Client, model string, temperature float32) *ChatGPTCompleter {
	return &ChatGPTCompleter{client: client, model: model, temperature: temperature}
}

// Chat sends a chat completion request.
func (c *ChatGPTCompleter) Chat(ctx context.Context, messages []qa.ChatMessage) (string, error) {
	req := chatgpt.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    make([]chatgpt.Message, 0, len(messages)),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, chatgpt.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ qa.ChatCompleter = (*ChatGPTCompleter)(nil)
