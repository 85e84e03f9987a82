package segment

import (
	"context"
	"strings"
)

// Syllable is a dependency-free fallback Segmenter that cuts text after
// every syllable or sentence mark, one syllable per token. It cannot join
// multi-syllable words, so affixed-particle detection degrades; corpus runs
// should configure a morphological tokenizer command instead.
type Syllable struct{}

// Segment implements Segmenter.
func (Syllable) Segment(_ context.Context, text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		switch r {
		case ' ':
			b.WriteRune('_')
		case '་', '།':
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " "), nil
}
