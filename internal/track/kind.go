package track

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	// default for tracks that do not name a kind
	Subtitles Kind = iota
	Captions
	Chapters
)

var kindNames = map[Kind]string{
	Subtitles: "subtitles",
	Captions:  "captions",
	Chapters:  "chapters",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kind name to its Kind. The empty string means subtitles.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Subtitles, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown track kind %q", s)
}

// Displayed reports whether active cues are rendered over the media.
func (k Kind) Displayed() bool {
	return k == Captions || k == Subtitles
}

// Navigable reports whether the cues are offered as seek targets.
func (k Kind) Navigable() bool {
	return k == Chapters
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
