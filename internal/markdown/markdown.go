package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Options controls markdown rendering.
type Options struct {
	// Highlight enables syntax highlighting of fenced code blocks.
	Highlight bool
	// Style is the chroma style used when Highlight is set.
	Style string
}

// Renderer converts markdown content imports into HTML. It is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub-flavored markdown enabled. Raw HTML in
// the source is passed through so content files may embed custom tags.
func New(opts Options) *Renderer {
	extensions := []goldmark.Extender{extension.GFM}
	if opts.Highlight {
		style := opts.Style
		if style == "" {
			style = "github"
		}
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
		))
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
