package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"lotsawa/internal/align"
	"lotsawa/internal/pofile"
	"lotsawa/internal/textfmt"

	"github.com/rs/zerolog/log"
)

// paragraphRe matches one human-inserted paragraph break in a reading copy.
var paragraphRe = regexp.MustCompile(`\n\n\n`)

// Exporter renders translated PO files as plain-text artifacts.
type Exporter struct {
	aligner      align.Aligner
	paragraphDir string
}

// NewExporter creates an Exporter writing reading copies under paragraphDir.
func NewExporter(aligner align.Aligner, paragraphDir string) *Exporter {
	return &Exporter{
		aligner:      aligner,
		paragraphDir: paragraphDir,
	}
}

// ExportStats summarizes one Export pass over a PO file.
type ExportStats struct {
	Units             int
	ParagraphsUpdated bool
}

// Export renders the plain-text artifacts for one PO file: a source/
// translation bitext and a translation-only text next to the PO file, plus
// a translation-first reading copy under the paragraph directory. French
// typography is applied to translations in the rendered output only; the PO
// file itself is never touched.
func (e *Exporter) Export(poPath string) (*ExportStats, error) {
	f, err := pofile.Load(poPath)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(f.Entries))
	trans := make([]string, len(f.Entries))
	for i, entry := range f.Entries {
		texts[i] = textfmt.FlattenNewlines(textfmt.Desegment(entry.ID))
		trans[i] = textfmt.FormatFrench(textfmt.FlattenNewlines(entry.Str))
	}

	bitext := make([]string, 0, 2*len(f.Entries))
	only := make([]string, 0, len(f.Entries))
	pars := make([]string, 0, 2*len(f.Entries))
	for i := range texts {
		bitext = append(bitext, texts[i], "\t"+trans[i])
		only = append(only, strings.TrimSpace(trans[i]))
		pars = append(pars, trans[i], "\t"+texts[i])
	}

	stem := strings.TrimSuffix(poPath, filepath.Ext(poPath))
	if err := os.WriteFile(stem+".txt", []byte(strings.Join(bitext, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("write bitext: %w", err)
	}
	if err := os.WriteFile(stem+"_only.txt", []byte(strings.Join(only, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("write translation text: %w", err)
	}

	updated, err := e.writeReadingCopy(filepath.Base(stem), strings.Join(pars, "\n"))
	if err != nil {
		return nil, err
	}

	stats := &ExportStats{Units: len(f.Entries), ParagraphsUpdated: updated}
	log.Info().
		Str("file", poPath).
		Int("units", stats.Units).
		Bool("paragraphs_updated", stats.ParagraphsUpdated).
		Msg("Exports written")
	return stats, nil
}

// writeReadingCopy creates or refreshes the paragraph reading copy. An
// existing copy is rewritten only when the content changed, carrying the
// human-inserted paragraph breaks onto the new content; an unchanged copy
// is left alone so those breaks are never disturbed without cause.
func (e *Exporter) writeReadingCopy(stem, content string) (bool, error) {
	if err := os.MkdirAll(e.paragraphDir, 0o755); err != nil {
		return false, fmt.Errorf("create paragraph directory: %w", err)
	}
	path := filepath.Join(e.paragraphDir, stem+".txt")

	old, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("write reading copy: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read reading copy: %w", err)
	}

	if strings.ReplaceAll(string(old), "\n\n\n", "\n") == content {
		return false, nil
	}

	carried, err := e.aligner.Transfer(string(old), paragraphRe, content)
	if err != nil {
		return false, fmt.Errorf("transfer paragraph breaks: %w", err)
	}
	// A carried break lands against the newline the new content already has
	// at that point; fold the two back together.
	carried = strings.ReplaceAll(carried, "\n\n\n\n", "\n\n\n")

	if err := os.WriteFile(path, []byte(carried), 0o644); err != nil {
		return false, fmt.Errorf("write reading copy: %w", err)
	}
	return true, nil
}
