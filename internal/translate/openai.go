package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-5-mini"

// implements Translator using OpenAI Chat Completions
type OpenAITranslator struct {
	*batcher
	client openai.Client
	model  string
}

func NewOpenAITranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	t := &OpenAITranslator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
	t.batcher = newBatcher("OpenAI", t, opts)
	return t, nil
}

func (t *OpenAITranslator) complete(ctx context.Context, prompt string) (string, error) {
	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return completion.Choices[0].Message.Content, nil
}
