package cli

import (
	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/config"
	"github.com/henry234/texttrack/internal/logging"
)

var (
	verbose bool
	envFile string
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "texttrack",
	Short: "Timed text tracks for media playback",
	Long: `texttrack parses WebVTT text tracks and follows which cues are active
as media plays.

It can simulate playback of a set of tracks, list chapters, extract
embedded subtitles from media files, translate tracks with an LLM and
serve a headless player session over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		if envFile != "" {
			return config.Load(envFile)
		}
		return config.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", "", "Environment file to load (default .env)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
