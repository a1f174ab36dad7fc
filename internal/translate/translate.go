// Package translate produces translated subtitle tracks by sending cue
// payloads to an LLM provider in JSON batches.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/henry234/texttrack/internal/logging"
)

// single cue payload to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated payload, matched to its Item by Index
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider accepts a provider name in any case.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	}
	return "", fmt.Errorf("unsupported translation provider: %s", s)
}

// APIKeyEnv names the environment variable holding the provider's key.
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
	Concurrency    int // requests in flight (default 3)
	Logger         *logging.Logger
}

// creates a Translator for provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// BuildPrompt renders the instructions and the JSON batch sent to the model.
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb, "Translate the following %s caption texts to %s.\n\n",
			opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&sb, "Translate the following caption texts to %s.\n\n",
			opts.TargetLanguage)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Keep markup tags (like <b>, <i>, <c.yellow>) unchanged.\n")
	sb.WriteString("3. Preserve line breaks (\\N) in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
