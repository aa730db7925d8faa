// Package doc renders the opaque rich-document payload used by long-format
// notes. The payload is markdown; the rest of the system never inspects it
// beyond this boundary.
package doc

import (
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Codec converts a raw document payload for display.
type Codec interface {
	// PlainText extracts best-effort plain text from the payload. It never
	// fails: any parse problem yields the empty string.
	PlainText(raw string) string

	// HTML renders the payload to sanitized HTML.
	HTML(raw string) []byte
}

// Markdown is the markdown implementation of Codec.
type Markdown struct {
	sanitize *bluemonday.Policy
	strip    *bluemonday.Policy
}

var _ Codec = (*Markdown)(nil)

// NewMarkdown creates a markdown codec. The UGC policy keeps user-generated
// formatting in HTML output; the strict policy strips everything down to text.
func NewMarkdown() *Markdown {
	return &Markdown{
		sanitize: bluemonday.UGCPolicy(),
		strip:    bluemonday.StrictPolicy(),
	}
}

// HTML renders markdown to sanitized HTML.
func (m *Markdown) HTML(raw string) (out []byte) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return m.sanitize.SanitizeBytes(render(raw))
}

// PlainText renders markdown and strips all markup, collapsing whitespace.
func (m *Markdown) PlainText(raw string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	stripped := m.strip.Sanitize(string(render(raw)))
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

func render(raw string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	node := p.Parse([]byte(raw))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	return markdown.Render(node, renderer)
}
