package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/playback"
	"github.com/henry234/texttrack/internal/source"
	"github.com/henry234/texttrack/internal/track"
)

var playCmd = &cobra.Command{
	Use:   "play [manifest|file]",
	Short: "Simulate playback and print every cue change",
	Long: `Simulate playback of a media item and print the active cues of each
showing or hidden track whenever they change.

The argument is either a YAML manifest listing the tracks of one media item
or a single track source. Tracks flagged as default are shown; a single
source is always shown.

With --watch, local track files are reloaded when they change on disk.

Examples:
  texttrack play movie.yaml
  texttrack play captions.vtt --kind captions --step 0.5 --interval 500ms
  texttrack play movie.yaml --from 60 --to 120 --loops 2 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("kind", "subtitles", "Kind of a single track source (subtitles, captions, chapters)")
	playCmd.Flags().Float64("from", 0, "Start position in seconds")
	playCmd.Flags().Float64("to", 0, "End position in seconds (0 plays to the end)")
	playCmd.Flags().Float64("step", 0.25, "Media seconds per tick")
	playCmd.Flags().Duration("interval", 0, "Wall time between ticks (0 runs as fast as possible)")
	playCmd.Flags().Int("loops", 1, "Number of passes over the range")
	playCmd.Flags().Float64("duration", 0, "Media duration in seconds (probed or derived when unset)")
	playCmd.Flags().Bool("watch", false, "Reload local track files when they change")
}

func runPlay(cmd *cobra.Command, args []string) error {
	kindStr, _ := cmd.Flags().GetString("kind")
	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	step, _ := cmd.Flags().GetFloat64("step")
	interval, _ := cmd.Flags().GetDuration("interval")
	loops, _ := cmd.Flags().GetInt("loops")
	duration, _ := cmd.Flags().GetFloat64("duration")
	watch, _ := cmd.Flags().GetBool("watch")

	kind, err := parseKindFlag(kindStr)
	if err != nil {
		return err
	}
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %v", step)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, args[0], kind, duration)
	if err != nil {
		return err
	}
	for _, t := range failedTracks(sess.tracks) {
		logger.Warnw("Track failed to load", "track", t.ID(), "src", t.Src(), "error", t.Err())
	}
	if sess.clock.Duration() <= 0 {
		return fmt.Errorf("cannot determine media duration: use --duration")
	}

	out := cmd.OutOrStdout()
	sess.tracks.On(func(ev track.Event) {
		switch ev.Type {
		case track.EventCueChange:
			printCueChange(out, sess.clock.CurrentTime(), ev.Track.ID(), ev.Active)
		case track.EventLoaded:
			logger.Infow("Track reloaded", "track", ev.Track.ID(), "cues", len(ev.Track.Cues()))
		}
	})
	sess.tracks.ShowDefaults(ctx)

	logger.Infow("Starting playback",
		"duration", sess.clock.Duration(),
		"from", from,
		"to", to,
		"step", step,
		"loops", loops,
	)

	reloads := make(chan *track.Track, sess.tracks.Len())
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	g, watchCtx := errgroup.WithContext(watchCtx)
	if watch {
		for _, t := range sess.tracks.All() {
			src, _, _ := strings.Cut(t.Src(), "#")
			if source.IsURL(src) {
				continue
			}
			g.Go(func() error {
				return source.Watch(watchCtx, src, source.DefaultDebounce, func() {
					select {
					case reloads <- t:
					default:
					}
				})
			})
		}
	}

	tick := func(now float64) {
	drain:
		for {
			select {
			case t := <-reloads:
				if err := t.Reload(ctx); err != nil {
					logger.Warnw("Reload failed", "track", t.ID(), "error", err)
				}
			default:
				break drain
			}
		}
		sess.tracks.TimeUpdate()
	}
	ended := func() {
		sess.tracks.Ended()
		fmt.Fprintf(out, "%s  -- ended\n", cue.FormatTime(sess.clock.CurrentTime()))
	}

	err = playback.Run(ctx, sess.clock, playback.Config{
		From:     from,
		To:       to,
		Step:     step,
		Interval: interval,
		Loops:    loops,
	}, tick, ended)

	cancelWatch()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printCueChange(w io.Writer, now float64, id string, active []cue.Cue) {
	if len(active) == 0 {
		fmt.Fprintf(w, "%s  %s: -\n", cue.FormatTime(now), id)
		return
	}
	texts := make([]string, len(active))
	for i, c := range active {
		texts[i] = fmt.Sprintf("%q", c.Text)
	}
	fmt.Fprintf(w, "%s  %s: %s\n", cue.FormatTime(now), id, strings.Join(texts, " | "))
}
