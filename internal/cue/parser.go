package cue

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// separates the start and end timestamps on a timing line
	TimingSeparator = "-->"

	DefaultLineBreak = "\n"
)

// blocks that carry no cue; skipped when not followed by a timing line
var metadataBlocks = []string{"NOTE", "STYLE", "REGION"}

// turns WebVTT-like text into cues
type Parser struct {
	// marker placed between payload lines
	LineBreak string
}

func NewParser() *Parser {
	return &Parser{LineBreak: DefaultLineBreak}
}

// Parse parses raw with the default parser.
func Parse(raw string) ([]Cue, error) {
	return NewParser().Parse(raw)
}

// Parse converts raw cue-file text into cues in parse order. The first line
// is the format header and is never inspected. The result is nil whenever an
// error is returned.
func (p *Parser) Parse(raw string) ([]Cue, error) {
	lines := strings.Split(raw, "\n")
	lineBreak := p.LineBreak
	if lineBreak == "" {
		lineBreak = DefaultLineBreak
	}

	var cues []Cue
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		var id string
		if strings.Contains(line, TimingSeparator) {
			id = strconv.Itoa(len(cues))
		} else {
			if isMetadataBlock(line) && !nextHasTiming(lines, i) {
				for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
					i++
				}
				continue
			}

			id = line
			if i+1 >= len(lines) {
				return nil, &ParseError{Line: i + 1, Text: id, Err: ErrMissingTiming}
			}
			i++
			line = strings.TrimSpace(lines[i])
		}

		start, end, err := parseTiming(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}

		var text []string
		for i+1 < len(lines) {
			payload := strings.TrimSpace(lines[i+1])
			if payload == "" {
				break
			}
			text = append(text, payload)
			i++
		}

		cues = append(cues, Cue{
			ID:        id,
			Index:     len(cues),
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(text, lineBreak),
		})
	}

	return cues, nil
}

func parseTiming(line string) (float64, float64, error) {
	sep := strings.Index(line, TimingSeparator)
	if sep < 0 {
		return 0, 0, ErrMissingTiming
	}

	start, err := ParseTime(line[:sep])
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	// anything after the end timestamp is cue settings, ignored here
	end, err := ParseTime(line[sep+len(TimingSeparator):])
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	if end < start {
		return 0, 0, ErrEndBeforeStart
	}

	return start, end, nil
}

// ParseTime parses [hours:]minutes:seconds[.|,milliseconds][ flags] into
// seconds. Flags are whitespace-separated and ignored.
func ParseTime(field string) (float64, error) {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	stamp := tokens[0]

	parts := strings.Split(stamp, ":")
	var hours, minutes, rest string
	switch len(parts) {
	case 2:
		hours, minutes, rest = "0", parts[0], parts[1]
	case 3:
		hours, minutes, rest = parts[0], parts[1], parts[2]
	default:
		return 0, fmt.Errorf(
			"%w: %q has %d colon groups",
			ErrInvalidTimestamp,
			stamp,
			len(parts),
		)
	}

	seconds, millis, hasMillis := strings.Cut(rest, ".")
	if !hasMillis {
		seconds, millis, hasMillis = strings.Cut(rest, ",")
	}

	h, err := parseUnsigned(hours)
	if err != nil {
		return 0, fmt.Errorf("%w: hours %q", ErrInvalidTimestamp, hours)
	}
	m, err := parseUnsigned(minutes)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q", ErrInvalidTimestamp, minutes)
	}
	s, err := parseUnsigned(seconds)
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q", ErrInvalidTimestamp, seconds)
	}

	total := float64(h)*3600 + float64(m)*60 + float64(s)
	if hasMillis && millis != "" {
		ms, err := parseUnsigned(millis)
		if err != nil {
			return 0, fmt.Errorf(
				"%w: milliseconds %q",
				ErrInvalidTimestamp,
				millis,
			)
		}
		total += float64(ms) / 1000
	}

	return total, nil
}

func parseUnsigned(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 10, 32)
}

func isMetadataBlock(line string) bool {
	for _, kw := range metadataBlocks {
		if line == kw ||
			strings.HasPrefix(line, kw+" ") ||
			strings.HasPrefix(line, kw+"\t") {
			return true
		}
	}
	return false
}

func nextHasTiming(lines []string, i int) bool {
	return i+1 < len(lines) && strings.Contains(lines[i+1], TimingSeparator)
}
