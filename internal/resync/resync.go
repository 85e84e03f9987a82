package resync

import (
	"fmt"
	"strings"

	"lotsawa/internal/align"
	"lotsawa/internal/anchor"
	"lotsawa/internal/textfmt"
)

// Line is one anchored source line. Rebuild consumes prior lines (with Text
// in the persisted segmented form) and emits current lines (with Text as it
// stands in the edited source).
type Line struct {
	Text   string
	Anchor string
}

// Orchestrator re-establishes the anchor-to-line correspondence after the
// source text has been edited.
type Orchestrator struct {
	aligner align.Aligner
}

// New creates an Orchestrator on the given alignment primitive.
func New(aligner align.Aligner) *Orchestrator {
	return &Orchestrator{aligner: aligner}
}

// Rebuild carries the prior units' anchors onto the edited raw text and
// returns the anchored line list. Lines the alignment could not account for
// get fresh anchors; every returned line carries exactly one. With no prior
// units the raw lines are simply anchored in order. Blank lines carry no
// translatable content and are dropped.
func (o *Orchestrator) Rebuild(prior []Line, raw string) ([]Line, error) {
	doc := normalize(raw)
	if doc == "" {
		return nil, nil
	}

	if len(prior) > 0 {
		marked, err := o.aligner.Transfer(markedDoc(prior), anchor.Pattern, doc)
		if err != nil {
			return nil, fmt.Errorf("transfer anchors: %w", err)
		}
		doc = marked
	}

	anchored := anchor.AssignMissing(strings.Split(doc, "\n"))
	lines := make([]Line, 0, len(anchored))
	for _, l := range anchored {
		text, a, ok := anchor.Strip(anchor.RepairDuplicates(l))
		if !ok {
			a = anchor.New()
		}
		lines = append(lines, Line{Text: text, Anchor: a})
	}
	return lines, nil
}

// markedDoc reconstructs the prior source version with its anchors in
// place, one desegmented unit per line.
func markedDoc(prior []Line) string {
	var b strings.Builder
	for i, u := range prior {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(anchor.Wrap(textfmt.Desegment(u.Text), u.Anchor))
	}
	return b.String()
}

// normalize trims the raw lines and drops the blank ones.
func normalize(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
