package source

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts raw track bytes to UTF-8. A leading byte order mark selects
// UTF-8, UTF-16LE or UTF-16BE and is dropped; without one the input is taken
// as UTF-8 and invalid sequences become U+FFFD.
func Decode(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", fmt.Errorf("failed to decode track text: %w", err)
	}
	return string(out), nil
}
