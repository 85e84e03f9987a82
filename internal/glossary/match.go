package glossary

import "strings"

// Matcher finds glossary entries occurring as whole units inside segmented
// lines. With dedupe set, an entry is reported once per line even when it
// matches at several positions.
type Matcher struct {
	index  *Index
	dedupe bool
}

// NewMatcher creates a Matcher over the index.
func NewMatcher(index *Index, dedupe bool) *Matcher {
	return &Matcher{index: index, dedupe: dedupe}
}

// FindEntries returns the entries whose headword occurs in the segmented
// line, in glossary source order. A headword matches when it starts the
// line, ends it, or sits between two boundaries; fragments of longer words
// never match.
func (m *Matcher) FindEntries(segmented string) []*Entry {
	line := normalizeLine(segmented)
	var found []*Entry
	for _, form := range m.index.forms {
		e := m.index.byForm[form]
		starts := strings.HasPrefix(line, form+" ")
		ends := strings.HasSuffix(line, " "+form)
		inside := strings.Contains(line, " "+form+" ")

		if m.dedupe {
			if starts || ends || inside {
				found = append(found, e)
			}
			continue
		}
		if starts {
			found = append(found, e)
		}
		if ends {
			found = append(found, e)
		}
		if inside {
			found = append(found, e)
		}
	}
	return found
}
