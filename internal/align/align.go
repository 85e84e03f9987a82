package align

import (
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Aligner carries pattern-matched spans from one version of a document onto
// the structurally corresponding positions in another version. Content that
// exists only in the target acquires no spans.
type Aligner interface {
	Transfer(marked string, pattern *regexp.Regexp, target string) (string, error)
}

// Diff aligns documents with diff-match-patch: the spans are cut out of the
// marked document, the remainder is diffed against the target, and each span
// is re-inserted where the text it annotated ended up.
type Diff struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiff creates a new diff-based Aligner.
func NewDiff() *Diff {
	return &Diff{dmp: diffmatchpatch.New()}
}

// span is one extracted annotation and its byte offset in the stripped
// document. A span annotates the text immediately before its offset.
type span struct {
	text string
	pos  int
}

// Transfer implements Aligner.
func (d *Diff) Transfer(marked string, pattern *regexp.Regexp, target string) (string, error) {
	spans, stripped := extract(marked, pattern)
	if len(spans) == 0 {
		return target, nil
	}

	diffs := d.dmp.DiffMain(stripped, target, true)
	diffs = d.dmp.DiffCleanupSemantic(diffs)

	return splice(target, place(diffs, spans)), nil
}

// extract cuts every pattern match out of the document, recording where each
// one sat in the stripped remainder.
func extract(marked string, pattern *regexp.Regexp) ([]span, string) {
	locs := pattern.FindAllStringIndex(marked, -1)
	if len(locs) == 0 {
		return nil, marked
	}
	spans := make([]span, 0, len(locs))
	var stripped strings.Builder
	stripped.Grow(len(marked))
	prev := 0
	for _, loc := range locs {
		stripped.WriteString(marked[prev:loc[0]])
		spans = append(spans, span{text: marked[loc[0]:loc[1]], pos: stripped.Len()})
		prev = loc[1]
	}
	stripped.WriteString(marked[prev:])
	return spans, stripped.String()
}

// place maps every span offset from the stripped document onto the target.
// A span whose preceding character survived follows it into the target. A
// span inside replaced text reattaches at the end of the replacement's first
// line. A span whose line vanished entirely, newline included, is dropped.
// Offsets land before any newline inserted at the same point, keeping
// end-of-line spans on their own line.
func place(diffs []diffmatchpatch.Diff, spans []span) []span {
	placed := make([]span, 0, len(spans))
	i := 0
	for i < len(spans) && spans[i].pos == 0 {
		placed = append(placed, span{text: spans[i].text})
		i++
	}

	src, dst := 0, 0
	for k, df := range diffs {
		if i == len(spans) {
			break
		}
		n := len(df.Text)
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			for i < len(spans) && spans[i].pos <= src+n {
				pos := dst + (spans[i].pos - src)
				if spans[i].pos == src+n {
					pos = extend(diffs[k+1:], pos)
				}
				placed = append(placed, span{text: spans[i].text, pos: pos})
				i++
			}
			src += n
			dst += n
		case diffmatchpatch.DiffDelete:
			for i < len(spans) && spans[i].pos <= src+n {
				// A newline between the span and the last surviving
				// character means the span's whole line is gone.
				if !strings.Contains(df.Text[:spans[i].pos-src], "\n") {
					placed = append(placed, span{text: spans[i].text, pos: extend(diffs[k+1:], dst)})
				}
				i++
			}
			src += n
		case diffmatchpatch.DiffInsert:
			dst += n
		}
	}

	for ; i < len(spans); i++ {
		placed = append(placed, span{text: spans[i].text, pos: dst})
	}
	return placed
}

// extend advances a boundary offset past insertions made at it, stopping at
// the first surviving character or inserted newline.
func extend(diffs []diffmatchpatch.Diff, pos int) int {
	for _, df := range diffs {
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			return pos
		case diffmatchpatch.DiffInsert:
			if nl := strings.IndexByte(df.Text, '\n'); nl >= 0 {
				return pos + nl
			}
			pos += len(df.Text)
		}
	}
	return pos
}

// splice inserts the placed spans into the target, left to right. Offsets
// are non-decreasing by construction.
func splice(target string, placed []span) string {
	total := len(target)
	for _, s := range placed {
		total += len(s.text)
	}
	var b strings.Builder
	b.Grow(total)
	prev := 0
	for _, s := range placed {
		b.WriteString(target[prev:s.pos])
		b.WriteString(s.text)
		prev = s.pos
	}
	b.WriteString(target[prev:])
	return b.String()
}
