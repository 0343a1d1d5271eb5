package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNormalises(t *testing.T) {
	assert.Equal(t, Key("Résumé.pdf"), Key("Résumé.pdf"))
	assert.Equal(t, "notes.txt", Key("/tmp/upload-123/notes.txt"))
}

func TestSourceChunk(t *testing.T) {
	src := Source{Name: "a.txt", Chunks: []Chunk{{Position: 1, Text: "one"}, {Position: 2, Text: "two"}}}

	c, ok := src.Chunk(2)
	require.True(t, ok)
	assert.Equal(t, "two", c.Text)

	for _, pos := range []int{0, 3, -1} {
		_, ok := src.Chunk(pos)
		assert.False(t, ok, "position %d", pos)
	}
}

func TestSetFind(t *testing.T) {
	set := NewSet([]Source{
		{Name: "b.pdf", Info: "first"},
		{Name: "Résumé.docx"},
		{Name: "a.txt"},
		{Name: "b.pdf", Info: "replaced"},
	})

	src, ok := set.Find("dir/b.pdf")
	require.True(t, ok)
	assert.Equal(t, "replaced", src.Info)

	_, ok = set.Find("Résumé.docx")
	assert.True(t, ok)

	_, ok = set.Find("missing.txt")
	assert.False(t, ok)
}

func TestSetAllRefs(t *testing.T) {
	set := NewSet([]Source{{
		Name:   "a.txt",
		Chunks: []Chunk{{Position: 1}, {Position: 2}, {Position: 3}},
	}})

	assert.Equal(t, []Ref{
		{File: "a.txt", Position: 1},
		{File: "a.txt", Position: 2},
		{File: "a.txt", Position: 3},
	}, set.AllRefs("a.txt"))
	assert.Nil(t, set.AllRefs("other.txt"))
}
