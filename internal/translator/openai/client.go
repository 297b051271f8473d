// Package openai provides a translator backend using an OpenAI-compatible
// chat-completion API.
package openai

import (
	"context"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"speech-translate-service/internal/translator"
)

var _ translator.Backend = (*Client)(nil)

// Client translates text through a chat model.
type Client struct {
	client oa.Client
	model  string
}

// New creates a chat-completion translator. baseURL may be empty to use the
// default OpenAI endpoint.
func New(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client: oa.NewClient(opts...),
		model:  model,
	}
}

// Translate asks the model for a bare translation of the text.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	system := fmt.Sprintf(
		"You are a translation engine. Translate the user's text from %s to %s. "+
			"Reply with the translation only, no quotes, no explanations.",
		sourceLang, targetLang)

	resp, err := c.client.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: c.model,
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(system),
			oa.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
