// Package llm wraps the Anthropic SDK behind the two narrow calls the
// engine needs: a single-shot completion for structured palette output and
// a conversational reply over the session transcript.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// Client wraps the Anthropic SDK client.
type Client struct {
	inner   anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// Model is the model to use; empty selects a current default.
	Model string
	// Timeout bounds every gateway call.
	Timeout time.Duration
}

// NewClient creates a new Anthropic gateway client.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		inner:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() anthropic.Model {
	return c.model
}

// Complete sends a single user prompt and returns the concatenated text of
// the response. Used for constrained structured output (palette generation).
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return concatText(resp), nil
}

// maxContextMessages caps how much transcript is replayed per turn.
const maxContextMessages = 20

// Chat sends the recent session transcript with a system prompt and returns
// the assistant's conversational reply.
func (c *Client) Chat(ctx context.Context, system string, history []models.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if len(history) > maxContextMessages {
		history = history[len(history)-maxContextMessages:]
	}

	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		text := m.Text
		if text == "" && m.HasImage {
			text = "(image attached)"
		}
		if text == "" {
			continue
		}
		block := anthropic.NewTextBlock(text)
		if m.Role == models.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock("Hello")))
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("llm chat: %w", err)
	}
	return concatText(resp), nil
}

func concatText(resp *anthropic.Message) string {
	var out string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			out += variant.Text
		}
	}
	return out
}
