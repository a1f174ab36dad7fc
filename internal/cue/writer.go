package cue

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const Header = "WEBVTT"

// writes cues as a WebVTT document; lineBreak is the marker used when the
// cues were parsed and is turned back into newlines
func Write(w io.Writer, cues []Cue, lineBreak string) error {
	if lineBreak == "" {
		lineBreak = DefaultLineBreak
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n\n", Header); err != nil {
		return err
	}

	for _, c := range cues {
		if c.ID != "" {
			fmt.Fprintf(bw, "%s\n", c.ID)
		}

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(bw, "%s %s %s\n",
			FormatTime(c.StartTime),
			TimingSeparator,
			FormatTime(c.EndTime))

		for _, line := range strings.Split(c.Text, lineBreak) {
			// blank payload lines would end the cue block
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(bw, "%s\n", line)
		}
		fmt.Fprint(bw, "\n")
	}

	return bw.Flush()
}

// writes cues to path, creating parent directories
func WriteFile(path string, cues []Cue, lineBreak string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, cues, lineBreak); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// HH:MM:SS.mmm, rounded to the millisecond
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))

	hours := total / 3_600_000
	minutes := (total / 60_000) % 60
	secs := (total / 1000) % 60
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}
