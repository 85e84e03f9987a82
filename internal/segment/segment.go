package segment

import (
	"context"
	"regexp"
	"strings"
)

// Segmenter tokenizes one line of Tibetan text. The returned form separates
// tokens with single spaces and rewrites spaces that were present in the raw
// line as underscores.
type Segmenter interface {
	Segment(ctx context.Context, text string) (string, error)
}

// affixedRe finds a token boundary between two bare characters. Neither side
// carries a syllable or sentence mark, so the right-hand token is a particle
// affixed to the word before it.
var affixedRe = regexp.MustCompile(`([^།་_]) ([^_།་])`)

// MarkBoundaries converts tokenizer output to the persisted segmented form:
// affixed-particle boundaries become ␣, raw-text spaces become U+1680, and
// the remaining spaces stay as plain token boundaries.
func MarkBoundaries(tokenized string) string {
	s := affixedRe.ReplaceAllString(tokenized, "${1}␣${2}")
	return strings.ReplaceAll(s, "_", " ")
}
