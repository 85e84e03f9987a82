package pofile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrMalformed reports PO syntax the codec does not accept. Parsing stops at
// the first offense; nothing is recovered.
var ErrMalformed = errors.New("malformed po file")

// Entry is one translation unit.
type Entry struct {
	TranslatorComment string // "# " lines
	ExtractedComment  string // "#. " lines
	Context           string // msgctxt
	ID                string // msgid
	Str               string // msgstr
}

// File is an ordered collection of translation units with header metadata.
type File struct {
	Metadata map[string]string
	Entries  []*Entry
}

// Header fields written before any custom metadata, in this order.
var metadataOrder = []string{"MIME-Version", "Content-Type", "Content-Transfer-Encoding"}

// NewFile creates an empty File carrying the standard header metadata.
func NewFile() *File {
	return &File{Metadata: map[string]string{
		"MIME-Version":              "1.0",
		"Content-Type":              "text/plain; charset=utf-8",
		"Content-Transfer-Encoding": "8bit",
	}}
}

// Load reads and parses a PO file. A missing file surfaces as a wrapped
// os.ErrNotExist.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open po file: %w", err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Save renders the file and writes it to path.
func (f *File) Save(path string) error {
	if err := os.WriteFile(path, []byte(f.render()), 0o644); err != nil {
		return fmt.Errorf("write po file: %w", err)
	}
	return nil
}

// Parse reads a PO document. Supported syntax is the subset the pipeline
// writes: one optional header entry, "# " and "#. " comments, msgctxt,
// msgid, msgstr and quoted continuation lines. Flag, reference and previous
// comments are tolerated and dropped; anything else fails with ErrMalformed.
func Parse(r io.Reader) (*File, error) {
	file := &File{Metadata: make(map[string]string)}

	var (
		cur        *Entry
		tcom, xcom []string
		field      *string
		headerSeen bool
		lineNum    int
	)

	flush := func() error {
		if cur == nil {
			return nil
		}
		cur.TranslatorComment = strings.Join(tcom, "\n")
		cur.ExtractedComment = strings.Join(xcom, "\n")
		if !headerSeen && len(file.Entries) == 0 && cur.ID == "" && cur.Context == "" {
			headerSeen = true
			meta, err := parseMetadata(cur.Str)
			if err != nil {
				return fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNum, err)
			}
			file.Metadata = meta
		} else {
			file.Entries = append(file.Entries, cur)
		}
		cur, tcom, xcom, field = nil, nil, nil, nil
		return nil
	}

	ensure := func() *Entry {
		if cur == nil {
			cur = &Entry{}
		}
		return cur
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			if err := flush(); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "#"):
			// A comment after msgstr opens the next entry.
			if cur != nil && field == &cur.Str {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			ensure()
			field = nil
			switch {
			case strings.HasPrefix(line, "#."):
				xcom = append(xcom, trimMarker(line, "#."))
			case strings.HasPrefix(line, "#,"), strings.HasPrefix(line, "#:"), strings.HasPrefix(line, "#|"):
				// Editor bookkeeping; not persisted.
			default:
				tcom = append(tcom, trimMarker(line, "#"))
			}

		case strings.HasPrefix(line, "msgctxt "):
			if cur != nil && (field == &cur.Str || field == &cur.ID) {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			e := ensure()
			value, err := unquote(strings.TrimPrefix(line, "msgctxt "))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNum, err)
			}
			e.Context = value
			field = &e.Context

		case strings.HasPrefix(line, "msgid "):
			if cur != nil && field == &cur.Str {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			e := ensure()
			value, err := unquote(strings.TrimPrefix(line, "msgid "))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNum, err)
			}
			e.ID = value
			field = &e.ID

		case strings.HasPrefix(line, "msgstr "):
			if cur == nil || field != &cur.ID {
				return nil, fmt.Errorf("%w: line %d: msgstr without msgid", ErrMalformed, lineNum)
			}
			value, err := unquote(strings.TrimPrefix(line, "msgstr "))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNum, err)
			}
			cur.Str = value
			field = &cur.Str

		case strings.HasPrefix(line, `"`):
			if field == nil {
				return nil, fmt.Errorf("%w: line %d: continuation without a field", ErrMalformed, lineNum)
			}
			value, err := unquote(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNum, err)
			}
			*field += value

		default:
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read po file: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return file, nil
}

// trimMarker strips a comment marker and the single space after it.
func trimMarker(line, marker string) string {
	return strings.TrimPrefix(strings.TrimPrefix(line, marker), " ")
}

// parseMetadata splits header msgstr content into key-value pairs.
func parseMetadata(s string) (map[string]string, error) {
	meta := make(map[string]string)
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("metadata line %q has no colon", line)
		}
		meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return meta, nil
}

// render writes the header entry first, then each unit separated by one
// blank line.
func (f *File) render() string {
	var b strings.Builder

	b.WriteString("msgid \"\"\n")
	b.WriteString("msgstr \"\"\n")
	for _, key := range orderedKeys(f.Metadata) {
		b.WriteString(quote(key + ": " + f.Metadata[key] + "\n"))
		b.WriteByte('\n')
	}

	for _, e := range f.Entries {
		b.WriteByte('\n')
		writeComment(&b, "#", e.TranslatorComment)
		writeComment(&b, "#.", e.ExtractedComment)
		if e.Context != "" {
			b.WriteString("msgctxt " + quote(e.Context) + "\n")
		}
		b.WriteString("msgid " + quote(e.ID) + "\n")
		b.WriteString("msgstr " + quote(e.Str) + "\n")
	}
	return b.String()
}

// orderedKeys lists the known header fields first, then the rest sorted.
func orderedKeys(meta map[string]string) []string {
	keys := make([]string, 0, len(meta))
	for _, key := range metadataOrder {
		if _, ok := meta[key]; ok {
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range meta {
		known := false
		for _, k := range metadataOrder {
			if key == k {
				known = true
				break
			}
		}
		if !known {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// writeComment renders one comment field, one marker line per newline
// segment. Empty segments render as the bare marker, so comments beginning
// with a newline survive a round trip.
func writeComment(b *strings.Builder, marker, comment string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(comment, "\n") {
		if line == "" {
			b.WriteString(marker + "\n")
			continue
		}
		b.WriteString(marker + " " + line + "\n")
	}
}

var quoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// quote renders a field value as one double-quoted PO string.
func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// unquote parses one double-quoted PO string.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("field %q is not quoted", s)
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			if c == '"' {
				return "", fmt.Errorf("unescaped quote in %q", s)
			}
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", s[i], s)
		}
	}
	return b.String(), nil
}
