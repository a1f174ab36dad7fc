package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/track"
)

type errorBody struct {
	Error string `json:"error"`
}

type trackSummary struct {
	ID         string           `json:"id"`
	Kind       track.Kind       `json:"kind"`
	Language   string           `json:"language,omitempty"`
	Label      string           `json:"label,omitempty"`
	Default    bool             `json:"default"`
	Mode       track.Mode       `json:"mode"`
	ReadyState track.ReadyState `json:"ready_state"`
	Cues       int              `json:"cues"`
	Error      string           `json:"error,omitempty"`
}

type playerState struct {
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	// active cues of every track that is not off, by track id
	Active map[string][]cue.Cue `json:"active"`
}

type modeRequest struct {
	Mode      string `json:"mode"`
	Exclusive bool   `json:"exclusive"`
}

type seekRequest struct {
	Time *float64 `json:"time"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func summarize(t *track.Track) trackSummary {
	sum := trackSummary{
		ID:         t.ID(),
		Kind:       t.Kind(),
		Language:   t.Language(),
		Label:      t.Label(),
		Default:    t.Default(),
		Mode:       t.Mode(),
		ReadyState: t.ReadyState(),
		Cues:       len(t.Cues()),
	}
	if err := t.Err(); err != nil {
		sum.Error = err.Error()
	}
	return sum
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.tracks.All()
	out := make([]trackSummary, 0, len(all))
	for _, t := range all {
		out = append(out, summarize(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves the {id} route parameter, loading the track's cues when
// they were never requested. It writes the error response itself.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*track.Track, bool) {
	id := chi.URLParam(r, "id")
	t, ok := s.tracks.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "track not found")
		return nil, false
	}
	if t.ReadyState() == track.None {
		_ = t.Load(r.Context())
	}
	if t.ReadyState() == track.Failed {
		writeError(w, http.StatusUnprocessableEntity, t.Err().Error())
		return nil, false
	}
	return t, true
}

func (s *Server) trackCues(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	cues := t.Cues()
	if cues == nil {
		cues = []cue.Cue{}
	}
	writeJSON(w, http.StatusOK, cues)
}

func (s *Server) trackChapters(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.clock.CurrentTime()
	if q := r.URL.Query().Get("at"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at parameter")
			return
		}
		at = v
	}

	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t.Chapters(at))
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Debugw("invalid mode body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := track.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if err := s.tracks.SetMode(r.Context(), id, mode, req.Exclusive); err != nil {
		if errors.Is(err, track.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "track not found")
			return
		}
		s.log.Errorw("set mode failed", "track", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	t, _ := s.tracks.Get(id)
	s.log.Infow("track mode changed", "track", id, "mode", mode, "exclusive", req.Exclusive)
	writeJSON(w, http.StatusOK, summarize(t))
}

func (s *Server) state() playerState {
	st := playerState{
		Time:     s.clock.CurrentTime(),
		Duration: s.clock.Duration(),
		Active:   map[string][]cue.Cue{},
	}
	for _, t := range s.tracks.All() {
		if t.Mode() == track.ModeOff {
			continue
		}
		active := t.ActiveCues()
		if active == nil {
			active = []cue.Cue{}
		}
		st.Active[t.ID()] = active
	}
	return st
}

func (s *Server) playerState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == nil {
		writeError(w, http.StatusBadRequest, "body must carry a numeric time")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.Seek(*req.Time)
	changed := s.tracks.TimeUpdate()
	s.log.Debugw("seek", "time", s.clock.CurrentTime(), "changed_tracks", changed)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) ended(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks.Ended()
	writeJSON(w, http.StatusOK, s.state())
}
