package textfmt

import (
	"testing"

	"lotsawa/internal/glossary"

	"github.com/stretchr/testify/assert"
)

func TestCleanLine(t *testing.T) {
	t.Run("Should remove collation notes and their colons", func(t *testing.T) {
		assert.Equal(t, "ཀཁ", CleanLine("ཀ<v1:ག>ཁ:"))
	})

	t.Run("Should keep colons on lines without notes", func(t *testing.T) {
		assert.Equal(t, "ཀ:ཁ", CleanLine("ཀ:ཁ"))
	})

	t.Run("Should remove pagination spans", func(t *testing.T) {
		assert.Equal(t, "ཀཁ", CleanLine("ཀ[3a.2]ཁ"))
	})

	t.Run("Should remove both kinds of apparatus", func(t *testing.T) {
		assert.Equal(t, "ཀཁ", CleanLine("[3a]ཀ<np>ཁ"))
	})

	t.Run("Should keep a line that is only apparatus", func(t *testing.T) {
		assert.Equal(t, "<v1:ཀ>:<v2:ཁ>", CleanLine("<v1:ཀ>:<v2:ཁ>"))
	})

	t.Run("Should leave clean lines alone", func(t *testing.T) {
		assert.Equal(t, "བཀྲ་ཤིས།", CleanLine("བཀྲ་ཤིས།"))
	})
}

func TestDesegment(t *testing.T) {
	t.Run("Should collapse token boundaries", func(t *testing.T) {
		assert.Equal(t, "བཀྲ་ཤིས་", Desegment("བཀྲ་ ཤིས་"))
	})

	t.Run("Should drop affixed-particle marks", func(t *testing.T) {
		assert.Equal(t, "ཡིནན", Desegment("ཡིན␣ན"))
	})

	t.Run("Should restore raw spaces", func(t *testing.T) {
		assert.Equal(t, "the mountain range", Desegment("the mountain range"))
	})
}

func TestFlattenNewlines(t *testing.T) {
	assert.Equal(t, "a b c", FlattenNewlines("a\nb\nc"))
}

func TestBold(t *testing.T) {
	t.Run("Should map ASCII letters and digits", func(t *testing.T) {
		assert.Equal(t, "𝐀𝐛𝐜 𝟏𝟐", Bold("Abc 12"))
	})

	t.Run("Should pass accents and Tibetan through", func(t *testing.T) {
		assert.Equal(t, "é𝐭é ཀ", Bold("été ཀ"))
	})
}

func TestRenderComment(t *testing.T) {
	t.Run("Should render nothing for no matches", func(t *testing.T) {
		assert.Equal(t, "", RenderComment(nil))
	})

	t.Run("Should render header, senses and examples", func(t *testing.T) {
		entries := []*glossary.Entry{
			{
				ID:       "42",
				Headword: "བཀྲ་ཤིས",
				Senses: []glossary.Sense{
					{Definition: "auspicious", Examples: []string{"ex one\nsecond line", "ex — two"}},
					{Definition: "fortune"},
				},
			},
		}
		want := "\n。︀\t〝བཀྲ་ཤིས〞 42\n" +
			Bold("auspicious") + "  ⁃ ex onesecond line ⁃ ex - two\n" +
			Bold("fortune") + " "
		assert.Equal(t, want, RenderComment(entries))
	})

	t.Run("Should render one header per entry", func(t *testing.T) {
		entries := []*glossary.Entry{
			{ID: "1", Headword: "ཀ"},
			{ID: "2", Headword: "ཁ"},
		}
		assert.Equal(t, "\n。︀\t〝ཀ〞 1\n\n。︀\t〝ཁ〞 2", RenderComment(entries))
	})
}

func TestFormatFrench(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Should fold ellipses", "et puis...", "et puis…"},
		{"Should bind colons", "il dit : oui", "il dit : oui"},
		{"Should bind exclamation marks", "quoi !", "quoi !"},
		{"Should bind question marks", "où ?", "où ?"},
		{"Should bind guillemets", "« mot »", "« mot »"},
		{"Should collapse doubled spaces first", "a  :  b", "a : b"},
		{"Should leave times alone", "à 10:30", "à 10:30"},
		{"Should leave plain text alone", "la montagne", "la montagne"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFrench(tc.in))
		})
	}
}
