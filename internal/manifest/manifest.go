// Package manifest reads the YAML document listing the text tracks of one
// piece of media.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/henry234/texttrack/internal/source"
	"github.com/henry234/texttrack/internal/track"
)

type Manifest struct {
	// seconds; probed from Media or derived from the cues when zero
	Duration float64 `yaml:"duration,omitempty"`
	Media    string  `yaml:"media,omitempty"`
	// payload line-break marker applied to every track
	LineBreak string  `yaml:"line_break,omitempty"`
	Tracks    []Entry `yaml:"tracks"`
}

type Entry struct {
	ID      string `yaml:"id,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Src     string `yaml:"src"`
	SrcLang string `yaml:"srclang,omitempty"`
	Label   string `yaml:"label,omitempty"`
	Title   string `yaml:"title,omitempty"`
	Default bool   `yaml:"default,omitempty"`
}

// Load reads the manifest at path. Relative sources are resolved against
// the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest, rejecting unknown fields.
func Parse(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	m.Media = resolve(baseDir, m.Media)
	for i := range m.Tracks {
		m.Tracks[i].Src = resolve(baseDir, m.Tracks[i].Src)
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	var errs []error
	if m.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %v", m.Duration))
	}
	if len(m.Tracks) == 0 {
		errs = append(errs, errors.New("manifest lists no tracks"))
	}
	for i, e := range m.Tracks {
		if e.Src == "" {
			errs = append(errs, fmt.Errorf("track %d: missing src", i))
		}
		if _, err := track.ParseKind(e.Kind); err != nil {
			errs = append(errs, fmt.Errorf("track %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func resolve(baseDir, src string) string {
	if src == "" || source.IsURL(src) || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(baseDir, src)
}

// Options converts the entries into track options in manifest order.
func (m *Manifest) Options() ([]track.Options, error) {
	opts := make([]track.Options, 0, len(m.Tracks))
	for i, e := range m.Tracks {
		kind, err := track.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		opts = append(opts, track.Options{
			ID:        e.ID,
			Kind:      kind,
			Src:       e.Src,
			Language:  e.SrcLang,
			Label:     e.Label,
			Title:     e.Title,
			Default:   e.Default,
			LineBreak: m.LineBreak,
		})
	}
	return opts, nil
}

// Single builds a manifest holding one default track read from src.
func Single(src string, kind track.Kind) *Manifest {
	return &Manifest{
		Tracks: []Entry{{
			Kind:    kind.String(),
			Src:     src,
			Label:   filepath.Base(src),
			Default: true,
		}},
	}
}
