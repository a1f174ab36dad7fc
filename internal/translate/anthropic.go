package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Translator using the Anthropic Messages API
type AnthropicTranslator struct {
	*batcher
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := anthropic.Model(opts.Model)
	if model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	t := &AnthropicTranslator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
	t.batcher = newBatcher("Anthropic", t, opts)
	return t, nil
}

func (t *AnthropicTranslator) complete(ctx context.Context, prompt string) (string, error) {
	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		},
	)
	if err != nil {
		return "", err
	}
	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
