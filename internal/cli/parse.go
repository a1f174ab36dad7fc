package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/cue"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a WebVTT track and print its cues",
	Long: `Parse a WebVTT text track and print the cues it contains.

The source may be a local file, an http(s) URL or a media file with an
embedded subtitle stream (movie.mkv#1 selects the second stream).

Examples:
  texttrack parse captions.vtt
  texttrack parse captions.vtt --json
  texttrack parse https://example.com/en.vtt --line-break "<br/>"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().Bool("json", false, "Print cues as JSON")
	parseCmd.Flags().
		String("line-break", cue.DefaultLineBreak, "Marker joining the payload lines of a cue")
}

func runParse(cmd *cobra.Command, args []string) error {
	src := args[0]
	asJSON, _ := cmd.Flags().GetBool("json")
	lineBreak, _ := cmd.Flags().GetString("line-break")

	text, err := newLoader().Load(cmd.Context(), src)
	if err != nil {
		return err
	}

	parser := cue.NewParser()
	parser.LineBreak = lineBreak
	cues, err := parser.Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", src, err)
	}

	logger.Infow("Parsed track", "source", src, "cues", len(cues))
	return printCues(cmd.OutOrStdout(), cues, asJSON)
}

func printCues(w io.Writer, cues []cue.Cue, asJSON bool) error {
	if asJSON {
		if cues == nil {
			cues = []cue.Cue{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cues)
	}

	for _, c := range cues {
		if _, err := fmt.Fprintf(w, "%d\t%s --> %s\t%q\n",
			c.Index, cue.FormatTime(c.StartTime), cue.FormatTime(c.EndTime), c.Text,
		); err != nil {
			return err
		}
	}
	return nil
}
