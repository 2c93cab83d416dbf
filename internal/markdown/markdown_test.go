package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	r := New(Options{})
	got, err := r.Render("# Hello\n\nSome *text*.\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, `<h1 id="hello">Hello</h1>`) {
		t.Errorf("heading missing: %q", got)
	}
	if !strings.Contains(got, "<em>text</em>") {
		t.Errorf("emphasis missing: %q", got)
	}
}

func TestRenderPassesRawHTML(t *testing.T) {
	r := New(Options{})
	got, err := r.Render("<sergey-import src=\"note\"></sergey-import>\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<sergey-import src="note"></sergey-import>`) {
		t.Errorf("raw HTML should pass through: %q", got)
	}
}

func TestRenderGFMAndHighlight(t *testing.T) {
	r := New(Options{Highlight: true})
	got, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n\n```go\nfunc main() {}\n```\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<table>") {
		t.Errorf("GFM table missing: %q", got)
	}
	if strings.Contains(got, `<code class="language-go">`) {
		t.Errorf("code block should be highlighted, got plain block: %q", got)
	}
}
