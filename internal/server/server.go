// Package server exposes a headless player session over HTTP: its text
// tracks, their modes, the playback position and the cues active at it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/henry234/texttrack/internal/logging"
	"github.com/henry234/texttrack/internal/metrics"
	"github.com/henry234/texttrack/internal/playback"
	"github.com/henry234/texttrack/internal/track"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	// requests per minute per client IP; zero disables limiting
	RateLimit int
}

type Server struct {
	// guards tracks and clock; trackers are single-threaded
	mu     sync.Mutex
	tracks *track.List
	clock  *playback.Clock

	log     *logging.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New wires a server around a track list and the clock it follows. m may be
// nil to disable metrics.
func New(tracks *track.List, clock *playback.Clock, log *logging.Logger, m *metrics.Metrics, opts Options) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		tracks:  tracks,
		clock:   clock,
		log:     log.Named("server"),
		metrics: m,
		opts:    opts,
	}

	tracks.On(func(ev track.Event) {
		switch ev.Type {
		case track.EventCueChange:
			if s.metrics != nil {
				s.metrics.IncCueChanges()
			}
			s.log.Debugw("cue change", "track", ev.Track.ID(), "active", len(ev.Active))
		case track.EventError:
			if s.metrics != nil {
				s.metrics.IncLoadFailures()
			}
		}
	})
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(metrics.RequestMiddleware(s.metrics))
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler(s.updateGauges))
	}

	r.Get("/healthz", s.health)

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.Limit(
				s.opts.RateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Retry-After", "60")
					writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				}),
			))
		}

		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", s.listTracks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/cues", s.trackCues)
				r.Get("/chapters", s.trackChapters)
				r.Post("/mode", s.setMode)
			})
		})

		r.Route("/player", func(r chi.Router) {
			r.Get("/", s.playerState)
			r.Post("/seek", s.seek)
			r.Post("/ended", s.ended)
		})
	})

	return r
}

func (s *Server) updateGauges() {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, t := range s.tracks.All() {
		if t.ReadyState() == track.Loaded {
			loaded++
		}
	}
	s.metrics.SetTracksLoaded(loaded)
}

// Run serves on addr until ctx is done, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.log.Infow("server starting", "addr", addr, "tracks", s.tracks.Len(), "rate_limit", s.opts.RateLimit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Infow("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Infow("server stopped")
	return nil
}
