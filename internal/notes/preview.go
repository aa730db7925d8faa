package notes

import (
	"strings"

	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/store"
)

// SnippetMaxLen is the character bound for list-view snippets. A truncated
// snippet carries a trailing "." marker, so the hard output bound is
// SnippetMaxLen+1.
const SnippetMaxLen = 100

// Snippet derives a short plain-text preview from a note's payload. It never
// fails; unparseable long-format payloads yield the empty string.
func Snippet(n *store.Note, codec doc.Codec) string {
	switch n.Type {
	case store.TypeChecklist:
		texts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			texts = append(texts, item.Text)
		}
		return truncate(strings.Join(texts, ", "))
	case store.TypeRegular:
		return truncate(collapseNewlines(strings.TrimSpace(n.Content)))
	case store.TypeLongFormat:
		if codec == nil {
			return ""
		}
		return truncate(codec.PlainText(n.Content))
	default:
		return ""
	}
}

// collapseNewlines replaces every CR/LF run with a single space.
func collapseNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inBreak := false
	for _, r := range s {
		if r == '\r' || r == '\n' {
			if !inBreak {
				b.WriteByte(' ')
				inBreak = true
			}
			continue
		}
		inBreak = false
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= SnippetMaxLen {
		return s
	}
	return string(runes[:SnippetMaxLen]) + "."
}
