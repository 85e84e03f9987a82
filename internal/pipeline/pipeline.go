package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lotsawa/internal/align"
	"lotsawa/internal/glossary"
	"lotsawa/internal/pofile"
	"lotsawa/internal/resync"
	"lotsawa/internal/segment"
	"lotsawa/internal/textfmt"
	"lotsawa/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Pipeline turns corpus text files into PO translation units.
type Pipeline struct {
	seg     segment.Segmenter
	matcher *glossary.Matcher
	resync  *resync.Orchestrator
}

// New creates a Pipeline.
func New(seg segment.Segmenter, matcher *glossary.Matcher, aligner align.Aligner) *Pipeline {
	return &Pipeline{
		seg:     seg,
		matcher: matcher,
		resync:  resync.New(aligner),
	}
}

// GenerateStats summarizes one Generate pass over a file.
type GenerateStats struct {
	Units   int // units written
	Carried int // anchors carried over from the prior file
	Fresh   int // anchors issued this pass
	Matched int // units with at least one glossary match
}

// Generate builds the PO file at poPath for the source text at txtPath.
// When the PO file already exists its anchors are resynchronized against
// the edited text and its translations carried forward; otherwise every
// line starts fresh. Unit order always follows the source text.
func (p *Pipeline) Generate(ctx context.Context, txtPath, poPath string) (*GenerateStats, error) {
	raw, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, fmt.Errorf("read source text: %w", err)
	}

	var prior []resync.Line
	translations := make(map[string]string)
	switch existing, err := pofile.Load(poPath); {
	case err == nil:
		for _, e := range existing.Entries {
			prior = append(prior, resync.Line{Text: e.ID, Anchor: e.Context})
			translations[e.Context] = e.Str
		}
	case errors.Is(err, os.ErrNotExist):
		// First pass for this file.
	default:
		return nil, err
	}

	lines, err := p.resync.Rebuild(prior, string(raw))
	if err != nil {
		return nil, fmt.Errorf("resynchronize %s: %w", txtPath, err)
	}

	out := pofile.NewFile()
	stats := &GenerateStats{Units: len(lines)}
	for _, line := range lines {
		cleaned := textfmt.CleanLine(line.Text)
		if !textutil.ContainsTibetan(cleaned) {
			log.Debug().Str("file", txtPath).Str("line", textutil.Truncate(cleaned, 40)).Msg("Line has no Tibetan content")
		}

		tokenized, err := p.seg.Segment(ctx, cleaned)
		if err != nil {
			return nil, fmt.Errorf("segment line: %w", err)
		}
		segmented := segment.MarkBoundaries(tokenized)

		entries := p.matcher.FindEntries(segmented)
		if len(entries) > 0 {
			stats.Matched++
		}

		str, carried := translations[line.Anchor]
		if carried {
			stats.Carried++
		} else {
			stats.Fresh++
		}

		out.Entries = append(out.Entries, &pofile.Entry{
			TranslatorComment: textfmt.RenderComment(entries),
			Context:           line.Anchor,
			ID:                segmented,
			Str:               str,
		})
	}

	if err := out.Save(poPath); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", poPath).
		Int("units", stats.Units).
		Int("carried", stats.Carried).
		Int("fresh", stats.Fresh).
		Int("matched", stats.Matched).
		Msg("Translation units written")
	return stats, nil
}
