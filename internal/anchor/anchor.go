package anchor

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Delim bounds an anchor value on each side. U+001F is a control character
// that never occurs in corpus text, so delimited anchors survive any edit
// made with an ordinary text editor.
const Delim = "\x1f"

// Pattern matches one delimited anchor segment.
var Pattern = regexp.MustCompile(`\x{1f}.+?\x{1f}`)

// New returns a fresh random 32-character hex anchor. Values are drawn from
// a 128-bit space and are not checked against previously issued anchors.
func New() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Wrap appends a delimited anchor to the line.
func Wrap(text, anchor string) string {
	return text + Delim + anchor + Delim
}

// Strip splits a line into its text and its trailing anchor. The boolean
// reports whether a trailing anchor was present; the text is whitespace
// trimmed either way.
func Strip(line string) (text, anchor string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, Delim) {
		return line, "", false
	}
	body := line[:len(line)-len(Delim)]
	open := strings.LastIndex(body, Delim)
	if open < 0 {
		return line, "", false
	}
	return strings.TrimSpace(body[:open]), body[open+len(Delim):], true
}

// AssignMissing trims every line and appends a fresh anchor to each one that
// does not already end with a delimiter. Anchored lines pass through, so a
// second pass over the same lines changes nothing.
func AssignMissing(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasSuffix(line, Delim) {
			line = Wrap(line, New())
		}
		out[i] = line
	}
	return out
}

// RepairDuplicates removes every anchor segment but the rightmost from a
// line carrying more than one. Alignment stacks anchors on a line when
// source lines merge; the rightmost one belonged to the line whose ending
// survived. Lines with at most one anchor pass through unchanged.
func RepairDuplicates(line string) string {
	if strings.Count(line, Delim) <= 2 {
		return line
	}
	for strings.Count(line, Delim) > 2 {
		first := strings.Index(line, Delim)
		rest := first + len(Delim)
		second := rest + strings.Index(line[rest:], Delim)
		line = line[:first] + line[second+len(Delim):]
	}
	return strings.TrimSpace(line)
}
