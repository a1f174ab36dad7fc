package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/henry234/texttrack/internal/config"
	"github.com/henry234/texttrack/internal/metrics"
	"github.com/henry234/texttrack/internal/server"
	"github.com/henry234/texttrack/internal/track"
)

const defaultAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve [manifest|file]",
	Short: "Serve a headless player session over HTTP",
	Long: `Serve the tracks of one media item over HTTP. Clients change track
modes, seek the player and read the cues active at the current position.

The listen address defaults to $TEXTTRACK_ADDR, or :8080. Requests are
limited per client IP to $TEXTTRACK_RATE_LIMIT per minute (0 disables).

Examples:
  texttrack serve movie.yaml
  texttrack serve captions.vtt --addr 127.0.0.1:9000 --duration 600`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default $TEXTTRACK_ADDR or :8080)")
	serveCmd.Flags().Int("rate-limit", -1, "Requests per minute per client IP (default $TEXTTRACK_RATE_LIMIT or 600)")
	serveCmd.Flags().String("kind", "subtitles", "Kind of a single track source (subtitles, captions, chapters)")
	serveCmd.Flags().Float64("duration", 0, "Media duration in seconds (probed or derived when unset)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	kindStr, _ := cmd.Flags().GetString("kind")
	duration, _ := cmd.Flags().GetFloat64("duration")

	if addr == "" {
		addr = config.GetEnv(config.EnvAddr, defaultAddr)
	}
	if rateLimit < 0 {
		rateLimit = config.GetEnvInt(config.EnvRateLimit, 600)
	}
	kind, err := parseKindFlag(kindStr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, args[0], kind, duration)
	if err != nil {
		return err
	}
	if sess.clock.Duration() <= 0 {
		return fmt.Errorf("cannot determine media duration: use --duration")
	}

	srv := server.New(sess.tracks, sess.clock, logger, metrics.New(), server.Options{RateLimit: rateLimit})
	sess.tracks.ShowDefaults(ctx)
	for _, t := range failedTracks(sess.tracks) {
		logger.Warnw("Track failed to load", "track", t.ID(), "src", t.Src(), "error", t.Err())
	}
	if ch := sess.tracks.DefaultChapters(ctx); ch != nil && ch.ReadyState() == track.Loaded {
		logger.Infow("Chapters available", "track", ch.ID(), "chapters", len(ch.Cues()))
	}

	return srv.Run(ctx, addr)
}
