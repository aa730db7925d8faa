package doc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText_StripsMarkup(t *testing.T) {
	m := NewMarkdown()

	got := m.PlainText("# Title\n\nSome **bold** and _italic_ text.")
	require.Equal(t, "Title Some bold and italic text.", got)
}

func TestPlainText_CollapsesWhitespace(t *testing.T) {
	m := NewMarkdown()

	got := m.PlainText("line one\n\nline two\n\n\nline   three")
	require.Equal(t, "line one line two line three", got)
}

func TestPlainText_EmptyInput(t *testing.T) {
	m := NewMarkdown()
	require.Equal(t, "", m.PlainText(""))
	require.Equal(t, "", m.PlainText("   \n\t  "))
}

func TestHTML_RendersAndSanitizes(t *testing.T) {
	m := NewMarkdown()

	out := string(m.HTML("Hello **world**"))
	require.Contains(t, out, "<strong>world</strong>")

	out = string(m.HTML("safe text <script>alert('x')</script>"))
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "safe text")
}

func TestHTML_KeepsLinks(t *testing.T) {
	m := NewMarkdown()

	out := string(m.HTML("[site](https://example.com)"))
	require.Contains(t, out, `href="https://example.com"`)
	require.Contains(t, out, ">site</a>")
}
