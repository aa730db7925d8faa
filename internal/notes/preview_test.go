package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/store"
)

func TestSnippet_ChecklistJoinsItemTexts(t *testing.T) {
	n := &store.Note{
		Type: store.TypeChecklist,
		Items: []store.ChecklistItem{
			{Text: "Buy milk"},
			{Text: "Call mom"},
			{Text: "Water plants"},
		},
	}
	require.Equal(t, "Buy milk, Call mom, Water plants", Snippet(n, nil))
}

func TestSnippet_RegularCollapsesLineBreaks(t *testing.T) {
	n := &store.Note{
		Type:    store.TypeRegular,
		Content: "  first line\r\n\r\nsecond line\nthird  ",
	}
	require.Equal(t, "first line second line third", Snippet(n, nil))
}

func TestSnippet_TruncatesWithMarker(t *testing.T) {
	n := &store.Note{
		Type:    store.TypeRegular,
		Content: strings.Repeat("a", 150),
	}
	got := Snippet(n, nil)
	require.Equal(t, strings.Repeat("a", 100)+".", got)

	n.Content = strings.Repeat("b", 100)
	require.Equal(t, n.Content, Snippet(n, nil))
}

func TestSnippet_LongFormatUsesPlainText(t *testing.T) {
	codec := doc.NewMarkdown()
	n := &store.Note{
		Type:    store.TypeLongFormat,
		Content: "# Heading\n\nSome **bold** text.",
	}
	got := Snippet(n, codec)
	require.NotContains(t, got, "#")
	require.NotContains(t, got, "**")
	require.Contains(t, got, "bold")
}

func TestSnippet_EmptyAndUnknown(t *testing.T) {
	require.Equal(t, "", Snippet(&store.Note{Type: store.TypeLongFormat}, doc.NewMarkdown()))
	require.Equal(t, "", Snippet(&store.Note{Type: store.NoteType(42), Content: "x"}, nil))
}

// testSnippetBounded checks the hard output bound over arbitrary payloads:
// at most SnippetMaxLen runes plus the one-rune truncation marker, and never
// a line break in the regular-note projection.
func testSnippetBounded(t *rapid.T) {
	codec := doc.NewMarkdown()
	typ := rapid.SampledFrom([]store.NoteType{
		store.TypeChecklist, store.TypeRegular, store.TypeLongFormat,
	}).Draw(t, "type")

	n := &store.Note{Type: typ}
	switch typ {
	case store.TypeChecklist:
		texts := rapid.SliceOfN(rapid.String(), 0, 8).Draw(t, "items")
		for _, text := range texts {
			n.Items = append(n.Items, store.ChecklistItem{Text: text})
		}
	default:
		n.Content = rapid.String().Draw(t, "content")
	}

	got := Snippet(n, codec)
	if runes := len([]rune(got)); runes > SnippetMaxLen+1 {
		t.Fatalf("snippet is %d runes, bound is %d", runes, SnippetMaxLen+1)
	}
	if typ == store.TypeRegular && strings.ContainsAny(got, "\r\n") {
		t.Fatalf("snippet contains a line break: %q", got)
	}
}

func TestSnippetBounded(t *testing.T) {
	rapid.Check(t, testSnippetBounded)
}

func FuzzSnippetBounded(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(testSnippetBounded))
}
