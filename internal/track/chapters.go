package track

import "fmt"

// Chapter is a navigation entry built from one cue.
type Chapter struct {
	Index    int     `json:"index"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Selected bool    `json:"selected"`
}

// Chapters lists every cue of the track as a chapter, marking the ones that
// contain now.
func (t *Track) Chapters(now float64) []Chapter {
	chapters := make([]Chapter, len(t.cues))
	for i, c := range t.cues {
		chapters[i] = Chapter{
			Index:    c.Index,
			ID:       c.ID,
			Title:    c.Text,
			Start:    c.StartTime,
			End:      c.EndTime,
			Selected: c.Contains(now),
		}
	}
	return chapters
}

// ChapterAt returns the first chapter containing now.
func (t *Track) ChapterAt(now float64) (Chapter, bool) {
	for _, ch := range t.Chapters(now) {
		if ch.Selected {
			return ch, true
		}
	}
	return Chapter{}, false
}

// SeekTarget returns the time a player seeks to when chapter i is picked.
func (t *Track) SeekTarget(i int) (float64, error) {
	if i < 0 || i >= len(t.cues) {
		return 0, fmt.Errorf("chapter %d out of range [0, %d)", i, len(t.cues))
	}
	return t.cues[i].StartTime, nil
}
