package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/track"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters [manifest|file]",
	Short: "List the chapters of a media item",
	Long: `List the chapters of a chapters track and mark the one selected at a
position.

With a manifest, the default chapters track is used, or the first one.

Examples:
  texttrack chapters chapters.vtt
  texttrack chapters movie.yaml --at 754.5`,
	Args: cobra.ExactArgs(1),
	RunE: runChapters,
}

func init() {
	rootCmd.AddCommand(chaptersCmd)

	chaptersCmd.Flags().Float64("at", 0, "Position in seconds used to select a chapter")
}

func runChapters(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetFloat64("at")
	ctx := cmd.Context()

	sess, err := openSession(ctx, args[0], track.Chapters, 0)
	if err != nil {
		return err
	}

	ch := sess.tracks.DefaultChapters(ctx)
	if ch == nil {
		return fmt.Errorf("%s has no chapters track", args[0])
	}
	if ch.ReadyState() == track.Failed {
		return ch.Err()
	}

	logger.Infow("Listing chapters", "track", ch.ID(), "chapters", len(ch.Cues()), "at", at)
	return printChapters(cmd.OutOrStdout(), ch.Chapters(at))
}

func printChapters(w io.Writer, chapters []track.Chapter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range chapters {
		mark := " "
		if c.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			mark, c.Index+1, cue.FormatTime(c.Start), cue.FormatTime(c.End), c.Title)
	}
	return tw.Flush()
}
