package translate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/henry234/texttrack/internal/cue"
)

// marker the prompt asks the model to keep in place of payload line breaks
const lineBreakMarker = `\N`

// Cues returns a translated copy of cues. IDs, indices and times are kept;
// cues with an empty payload are not sent. lineBreak is the marker the cue
// payloads were parsed with.
func Cues(ctx context.Context, tr Translator, cues []cue.Cue, lineBreak string) ([]cue.Cue, error) {
	if lineBreak == "" {
		lineBreak = cue.DefaultLineBreak
	}

	items := make([]Item, 0, len(cues))
	for _, c := range cues {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		items = append(items, Item{
			Index: c.Index,
			Text:  strings.ReplaceAll(c.Text, lineBreak, lineBreakMarker),
		})
	}

	out := slices.Clone(cues)
	if len(items) == 0 {
		return out, nil
	}

	results, err := tr.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		byIndex[r.Index] = r.Text
	}

	for i := range out {
		if strings.TrimSpace(out[i].Text) == "" {
			continue
		}
		text, ok := byIndex[out[i].Index]
		if !ok {
			return nil, fmt.Errorf("no translation for cue %d", out[i].Index)
		}
		out[i].Text = strings.ReplaceAll(text, lineBreakMarker, lineBreak)
	}
	return out, nil
}
