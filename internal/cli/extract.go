package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/media"
)

var extractCmd = &cobra.Command{
	Use:   "extract [media_file]",
	Short: "Extract an embedded subtitle stream to WebVTT",
	Long: `Extract a subtitle stream embedded in a media file and save it as a
WebVTT track.

Streams are counted among subtitle streams only, starting at 0.

Examples:
  texttrack extract movie.mkv
  texttrack extract movie.mkv -s 1 -o movie.fr.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntP("stream", "s", 0, "Subtitle stream to extract")
}

func runExtract(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("media file not found: %s", mediaPath)
	}
	if !media.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported media format %q", filepath.Ext(mediaPath))
	}
	if stream < 0 {
		return fmt.Errorf("stream must not be negative, got %d", stream)
	}

	info, err := media.Probe(ctx, mediaPath)
	if err != nil {
		return err
	}
	if info.SubtitleStreams == 0 {
		return fmt.Errorf("%s has no subtitle streams", mediaPath)
	}
	if stream >= info.SubtitleStreams {
		return fmt.Errorf("stream %d out of range: %s has %d subtitle streams",
			stream, mediaPath, info.SubtitleStreams)
	}

	if outputPath == "" {
		outputPath = extractOutputPath(mediaPath, stream)
	}

	logger.Infow("Extracting subtitles",
		"media", mediaPath,
		"stream", stream,
		"codec", info.SubtitleCodecs[stream],
		"output", outputPath,
	)

	if err := media.NewExtractor("").ExtractToFile(ctx, mediaPath, stream, outputPath); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cues, err := loadTrackFile(ctx, outputPath, cue.DefaultLineBreak)
	if err != nil {
		return fmt.Errorf("extracted track is not valid: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtitles extracted successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", len(cues))
	return nil
}

// extractOutputPath names the track next to the media: movie.vtt for the
// first stream, movie.N.vtt otherwise.
func extractOutputPath(mediaPath string, stream int) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	if stream == 0 {
		return base + ".vtt"
	}
	return fmt.Sprintf("%s.%d.vtt", base, stream)
}
