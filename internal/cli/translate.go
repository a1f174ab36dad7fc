package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [track_file]",
	Short: "Translate a text track to another language using AI",
	Long: `Translate the cue payloads of a WebVTT track to another language using
an LLM provider. Cue identifiers and timings are kept; only the text changes.

Examples:
  texttrack translate movie.vtt --target-language japanese
  texttrack translate movie.vtt -t es --provider anthropic
  texttrack translate movie.vtt -l english -t french -o movie.fr.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the model")
	translateCmd.Flags().
		Int("concurrency", translate.DefaultConcurrency, "Number of parallel translation requests")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of cues per API request")
	translateCmd.Flags().
		String("line-break", cue.DefaultLineBreak, "Marker joining the payload lines of a cue")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	trackPath := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	lineBreak, _ := cmd.Flags().GetString("line-break")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(trackPath); os.IsNotExist(err) {
		return fmt.Errorf("track file not found: %s", trackPath)
	}

	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	cues, err := loadTrackFile(ctx, trackPath, lineBreak)
	if err != nil {
		return err
	}
	if len(cues) == 0 {
		return fmt.Errorf("track contains no cues")
	}

	provider, err := translate.ParseProvider(providerStr)
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if outputPath == "" {
		outputPath = translateOutputPath(trackPath, targetLang)
	}

	logger.Infow("Starting track translation",
		"input", trackPath,
		"output", outputPath,
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating cues", "cues", len(cues), "concurrency", concurrency)
	translated, err := translate.Cues(ctx, translator, cues, lineBreak)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if err := cue.WriteFile(outputPath, translated, lineBreak); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Track translated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", len(translated))
	fmt.Fprintf(out, "  Target language: %s\n", targetLang)
	return nil
}

// translateOutputPath inserts the target language before the extension:
// movie.vtt becomes movie.ja.vtt.
func translateOutputPath(trackPath, targetLang string) string {
	ext := filepath.Ext(trackPath)
	base := strings.TrimSuffix(trackPath, ext)
	if ext == "" {
		ext = ".vtt"
	}
	return fmt.Sprintf("%s.%s%s", base, targetLang, ext)
}
