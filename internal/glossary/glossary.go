package glossary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"lotsawa/internal/segment"

	"github.com/rs/zerolog/log"
)

// ErrNoSource reports a missing glossary source file.
var ErrNoSource = errors.New("glossary source not found")

// Sense is one dictionary definition with its supporting example lines.
type Sense struct {
	Definition string   `json:"definition"`
	Examples   []string `json:"examples"`
}

// Entry is one glossary headword with its senses. The headword is stored
// without its trailing sentence mark.
type Entry struct {
	ID       string
	Headword string
	Senses   []Sense
}

// Index maps segmented headword forms to entries. It is built once per run
// and read concurrently by every match pass; source order is preserved so
// match output stays deterministic.
type Index struct {
	forms  []string
	byForm map[string]*Entry
}

// newIndex creates an empty Index.
func newIndex() *Index {
	return &Index{byForm: make(map[string]*Entry)}
}

// add registers an entry under its segmented form. A repeated form keeps its
// place in the order but takes the later entry.
func (ix *Index) add(form string, e *Entry) {
	if _, ok := ix.byForm[form]; !ok {
		ix.forms = append(ix.forms, form)
	}
	ix.byForm[form] = e
}

// Len returns the number of indexed headword forms.
func (ix *Index) Len() int {
	return len(ix.forms)
}

// Build reads the glossary source and indexes every headword under its
// segmented form. The source is a JSON object keyed by entry number, each
// value ["headword", [["definition", ["example", ...]], ...]].
func Build(ctx context.Context, sourcePath string, seg segment.Segmenter) (*Index, error) {
	f, err := os.Open(sourcePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, sourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open glossary source: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse glossary source: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse glossary source: want top-level object, got %v", tok)
	}

	ix := newIndex()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse glossary source: %w", err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse glossary source: want string key, got %v", keyTok)
		}

		entry, err := decodeEntry(dec, id)
		if err != nil {
			return nil, err
		}

		tokenized, err := seg.Segment(ctx, entry.Headword)
		if err != nil {
			return nil, fmt.Errorf("segment headword %q: %w", entry.Headword, err)
		}
		ix.add(normalizeKey(segment.MarkBoundaries(tokenized)), entry)
	}

	log.Info().Int("entries", ix.Len()).Str("source", sourcePath).Msg("Glossary index built")
	return ix, nil
}

// decodeEntry reads one ["headword", senses] value.
func decodeEntry(dec *json.Decoder, id string) (*Entry, error) {
	var parts []json.RawMessage
	if err := dec.Decode(&parts); err != nil {
		return nil, fmt.Errorf("glossary entry %s: %w", id, err)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("glossary entry %s: want [headword, senses], got %d elements", id, len(parts))
	}

	var headword string
	if err := json.Unmarshal(parts[0], &headword); err != nil {
		return nil, fmt.Errorf("glossary entry %s headword: %w", id, err)
	}

	var rawSenses [][]json.RawMessage
	if err := json.Unmarshal(parts[1], &rawSenses); err != nil {
		return nil, fmt.Errorf("glossary entry %s senses: %w", id, err)
	}
	senses := make([]Sense, 0, len(rawSenses))
	for _, rs := range rawSenses {
		if len(rs) != 2 {
			return nil, fmt.Errorf("glossary entry %s: want [definition, examples] per sense", id)
		}
		var s Sense
		if err := json.Unmarshal(rs[0], &s.Definition); err != nil {
			return nil, fmt.Errorf("glossary entry %s definition: %w", id, err)
		}
		if err := json.Unmarshal(rs[1], &s.Examples); err != nil {
			return nil, fmt.Errorf("glossary entry %s examples: %w", id, err)
		}
		senses = append(senses, s)
	}

	return &Entry{ID: id, Headword: strings.TrimSuffix(headword, "།"), Senses: senses}, nil
}

// normalizeKey collapses a segmented headword to its match form: marked
// particle boundaries and syllable-mark boundaries become plain spaces.
func normalizeKey(segmented string) string {
	s := strings.ReplaceAll(segmented, "␣", " ")
	return strings.ReplaceAll(s, "་ ", " ")
}

// normalizeLine collapses a segmented corpus line to the same match form.
// Lines additionally carry raw-space marks, which headwords never do.
func normalizeLine(segmented string) string {
	return strings.ReplaceAll(normalizeKey(segmented), " ", " ")
}
