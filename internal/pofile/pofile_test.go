package pofile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Run("Should survive save and load unchanged", func(t *testing.T) {
		f := NewFile()
		f.Entries = append(f.Entries,
			&Entry{
				TranslatorComment: "\n。︀\t〝བཀྲ་ཤིས〞 42\nauspicious  ⁃ example",
				Context:           "0f1e2d3c4b5a69788796a5b4c3d2e1f0",
				ID:                "བཀྲ་ ཤིས␣ཤོག ཀ",
				Str:               "",
			},
			&Entry{
				ExtractedComment: "folio 3a",
				Context:          "00112233445566778899aabbccddeeff",
				ID:               "ཆོས་ ཀྱི",
				Str:              "le dharma \"cité\"\navec retour",
			},
		)

		path := filepath.Join(t.TempDir(), "unit.po")
		require.NoError(t, f.Save(path))

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, f.Metadata, got.Metadata)
		require.Len(t, got.Entries, 2)
		assert.Equal(t, f.Entries[0], got.Entries[0])
		assert.Equal(t, f.Entries[1], got.Entries[1])
	})

	t.Run("Should write standard header metadata", func(t *testing.T) {
		f := NewFile()
		path := filepath.Join(t.TempDir(), "empty.po")
		require.NoError(t, f.Save(path))

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "1.0", got.Metadata["MIME-Version"])
		assert.Equal(t, "text/plain; charset=utf-8", got.Metadata["Content-Type"])
		assert.Equal(t, "8bit", got.Metadata["Content-Transfer-Encoding"])
		assert.Empty(t, got.Entries)
	})
}

func TestParse(t *testing.T) {
	t.Run("Should join continuation lines", func(t *testing.T) {
		doc := `msgid ""
msgstr ""
"MIME-Version: 1.0\n"

msgctxt "abcd"
msgid "part one "
"part two"
msgstr ""
"ligne une\n"
"ligne deux"
`
		f, err := Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, f.Entries, 1)
		assert.Equal(t, "part one part two", f.Entries[0].ID)
		assert.Equal(t, "ligne une\nligne deux", f.Entries[0].Str)
	})

	t.Run("Should split entries at the next msgctxt without a blank line", func(t *testing.T) {
		doc := `msgctxt "aa"
msgid "ka"
msgstr "un"
msgctxt "bb"
msgid "kha"
msgstr "deux"
`
		f, err := Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, f.Entries, 2)
		assert.Equal(t, "aa", f.Entries[0].Context)
		assert.Equal(t, "bb", f.Entries[1].Context)
	})

	t.Run("Should attach comments to the following entry", func(t *testing.T) {
		doc := `msgid "ka"
msgstr "un"

# note line
#. extracted
msgid "kha"
msgstr ""
`
		f, err := Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, f.Entries, 2)
		assert.Empty(t, f.Entries[0].TranslatorComment)
		assert.Equal(t, "note line", f.Entries[1].TranslatorComment)
		assert.Equal(t, "extracted", f.Entries[1].ExtractedComment)
	})

	t.Run("Should drop editor bookkeeping comments", func(t *testing.T) {
		doc := `#, fuzzy
#: ref.txt:3
# kept
msgid "ka"
msgstr ""
`
		f, err := Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, f.Entries, 1)
		assert.Equal(t, "kept", f.Entries[0].TranslatorComment)
	})

	t.Run("Should unescape quoted values", func(t *testing.T) {
		doc := `msgid "a\"b\\c\td"
msgstr ""
`
		f, err := Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, f.Entries, 1)
		assert.Equal(t, "a\"b\\c\td", f.Entries[0].ID)
	})

	t.Run("Should reject an unquoted field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("msgid bare\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Should reject msgstr without msgid", func(t *testing.T) {
		_, err := Parse(strings.NewReader("msgstr \"x\"\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Should reject a stray continuation", func(t *testing.T) {
		_, err := Parse(strings.NewReader("\"floating\"\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Should reject arbitrary prose", func(t *testing.T) {
		_, err := Parse(strings.NewReader("msgid \"ka\"\nmsgstr \"\"\n\nnot a po line\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Should reject an unknown escape", func(t *testing.T) {
		_, err := Parse(strings.NewReader("msgid \"a\\qb\"\nmsgstr \"\"\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Should reject metadata without a colon", func(t *testing.T) {
		doc := `msgid ""
msgstr ""
"not metadata\n"
`
		_, err := Parse(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should surface a missing file as os.ErrNotExist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.po"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
