package textfmt

import (
	"fmt"
	"regexp"
	"strings"

	"lotsawa/internal/glossary"
)

// Editorial apparatus carried by digitized corpus lines.
var (
	noteRe = regexp.MustCompile(`<.*?>`)
	pageRe = regexp.MustCompile(`\[.+?\]`)
)

// CleanLine strips apparatus from a raw corpus line: angle-bracket collation
// notes together with their colon variant marks, then square-bracket
// pagination spans. Lines without collation notes keep their colons. A line
// whose note-stripped form is empty is pure apparatus and keeps its raw form.
func CleanLine(line string) string {
	if noteRe.MatchString(line) {
		stripped := noteRe.ReplaceAllString(line, "")
		stripped = strings.ReplaceAll(stripped, ":", "")
		if stripped != "" {
			line = stripped
		}
	}
	return pageRe.ReplaceAllString(line, "")
}

// Desegment restores the corpus form of a segmented line: token boundaries
// collapse, affixed-particle marks vanish, raw-space marks become spaces.
func Desegment(segmented string) string {
	s := strings.ReplaceAll(segmented, " ", "")
	s = strings.ReplaceAll(s, "␣", "")
	return strings.ReplaceAll(s, " ", " ")
}

// FlattenNewlines folds a multi-line field onto one line.
func FlattenNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderComment builds the annotation block for the glossary entries matched
// on one line: a header line per entry, then one line per sense carrying the
// definition and its example lines. Empty input renders to an empty string.
func RenderComment(entries []*glossary.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("\n。︀\t〝%s〞 %s", e.Headword, e.ID))
		for _, s := range e.Senses {
			var examples strings.Builder
			for _, ex := range s.Examples {
				ex = strings.ReplaceAll(ex, "\n", "")
				ex = strings.ReplaceAll(ex, "—", "-")
				examples.WriteString(" ⁃ ")
				examples.WriteString(ex)
			}
			lines = append(lines, Bold(s.Definition)+" "+examples.String())
		}
	}
	return strings.Join(lines, "\n")
}

// Bold maps ASCII letters and digits to their Mathematical Bold forms,
// passing every other rune through.
func Bold(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune('𝐀' + (r - 'A'))
		case r >= 'a' && r <= 'z':
			b.WriteRune('𝐚' + (r - 'a'))
		case r >= '0' && r <= '9':
			b.WriteRune('𝟎' + (r - '0'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// frenchSpacing rewrites plain spaces around French punctuation to their
// non-breaking forms and folds ASCII ellipses. Spacing is only rewritten
// where it already exists, never inserted, so colons inside times or URLs
// stay intact.
var frenchSpacing = strings.NewReplacer(
	"...", "…",
	" :", " :",
	" ;", " ;",
	" !", " !",
	" ?", " ?",
	" »", " »",
	"« ", "« ",
)

// FormatFrench applies French typography to a translation for export:
// doubled spaces collapse first, then punctuation spacing is rewritten.
func FormatFrench(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return frenchSpacing.Replace(s)
}
