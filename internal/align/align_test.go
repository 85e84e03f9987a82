package align

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchorPattern = regexp.MustCompile("\x1f.+?\x1f")

// mk builds a delimited span the way anchored documents carry them.
func mk(id string) string {
	return "\x1f" + id + "\x1f"
}

func TestTransfer(t *testing.T) {
	aligner := NewDiff()

	transfer := func(t *testing.T, marked, target string) string {
		t.Helper()
		out, err := aligner.Transfer(marked, anchorPattern, target)
		require.NoError(t, err)
		return out
	}

	t.Run("Should return target unchanged when nothing is marked", func(t *testing.T) {
		out := transfer(t, "a\nb", "a\nb\nc")
		assert.Equal(t, "a\nb\nc", out)
	})

	t.Run("Should reproduce the marked document on identical text", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2")
		out := transfer(t, marked, "a\nb")
		assert.Equal(t, marked, out)
	})

	t.Run("Should leave an appended line bare", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2")
		out := transfer(t, marked, "a\nb\nc")
		assert.Equal(t, "a"+mk("u1")+"\nb"+mk("u2")+"\nc", out)
	})

	t.Run("Should leave a prepended line bare", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2")
		out := transfer(t, marked, "z\na\nb")
		assert.Equal(t, "z\na"+mk("u1")+"\nb"+mk("u2"), out)
	})

	t.Run("Should follow a line end extended by new text", func(t *testing.T) {
		marked := "text1" + mk("u1") + "\ntext2" + mk("u2")
		out := transfer(t, marked, "text1\ntext2 more")
		assert.Equal(t, "text1"+mk("u1")+"\ntext2 more"+mk("u2"), out)
	})

	t.Run("Should follow a line end through a final word swap", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb foo" + mk("u2")
		out := transfer(t, marked, "a\nb bar")
		assert.Equal(t, "a"+mk("u1")+"\nb bar"+mk("u2"), out)
	})

	t.Run("Should stack the span of a deleted middle line onto the next line", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2") + "\nc" + mk("u3")
		out := transfer(t, marked, "a\nc")
		assert.Equal(t, "a"+mk("u1")+"\n"+mk("u2")+"c"+mk("u3"), out)
	})

	t.Run("Should drop the span of a deleted trailing line", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2")
		out := transfer(t, marked, "a")
		assert.Equal(t, "a"+mk("u1"), out)
	})

	t.Run("Should stack spans when two lines merge", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nb" + mk("u2") + "\nc" + mk("u3")
		out := transfer(t, marked, "a\nbc")
		assert.Equal(t, "a"+mk("u1")+"\nb"+mk("u2")+"c"+mk("u3"), out)
	})

	t.Run("Should keep the span on the second fragment of a split line", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nbc" + mk("u2")
		out := transfer(t, marked, "a\nb\nc")
		assert.Equal(t, "a"+mk("u1")+"\nb\nc"+mk("u2"), out)
	})

	t.Run("Should keep the first span and drop the rest on a full rewrite", func(t *testing.T) {
		marked := "alpha" + mk("u1") + "\nbeta" + mk("u2")
		out := transfer(t, marked, "qq ww")
		assert.Equal(t, "qq ww"+mk("u1"), out)
	})

	t.Run("Should keep a span on a line rewritten in place", func(t *testing.T) {
		marked := "a" + mk("u1") + "\nxyz" + mk("u2") + "\nb" + mk("u3")
		out := transfer(t, marked, "a\nqqq\nb")
		assert.Equal(t, "a"+mk("u1")+"\nqqq"+mk("u2")+"\nb"+mk("u3"), out)
	})
}

func TestTransferParagraphMarks(t *testing.T) {
	aligner := NewDiff()
	pattern := regexp.MustCompile(`\n\n\n`)

	t.Run("Should land a carried break beside the target newline", func(t *testing.T) {
		old := "t1\n\tx1\n\n\nt2\n\tx2"
		out, err := aligner.Transfer(old, pattern, "t1\n\tx1\nt2'\n\tx2")
		require.NoError(t, err)
		// The transferred break sits against the newline the target already
		// has at that point, so the caller collapses four newlines to three.
		assert.Equal(t, "t1\n\tx1\n\n\n\nt2'\n\tx2", out)
	})

	t.Run("Should carry a break across unchanged text", func(t *testing.T) {
		old := "p\n\n\nq"
		out, err := aligner.Transfer(old, pattern, "pq")
		require.NoError(t, err)
		assert.Equal(t, "p\n\n\nq", out)
	})
}
