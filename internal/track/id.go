package track

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator hands out track identifiers unique within one generator.
type IDGenerator struct {
	n atomic.Uint64
}

// Next returns tt_<kind>_<lang>_<n>; n starts at 1.
func (g *IDGenerator) Next(kind Kind, lang string) string {
	if lang == "" {
		lang = "und"
	}
	return fmt.Sprintf("tt_%s_%s_%d", kind, lang, g.n.Add(1))
}
