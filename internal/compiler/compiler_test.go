package compiler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/sergeyhtml/sergey/internal/fragment"
	"github.com/sergeyhtml/sergey/internal/markdown"
)

func newTestCompiler(t *testing.T, imports map[string]string, content map[string]string) *Compiler {
	t.Helper()
	store := fragment.NewStore("_imports", "_content")
	for ref, body := range imports {
		store.Put(store.ImportKey(ref), body)
	}
	for ref, body := range content {
		store.Put(store.ContentKey(ref), body)
	}
	return New(store, markdown.New(markdown.Options{}))
}

func mustCompile(t *testing.T, c *Compiler, page string) string {
	t.Helper()
	out, err := c.Compile(page)
	if err != nil {
		t.Fatalf("Compile(%q): %v", page, err)
	}
	return out
}

func TestExtractSlots(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Slots
	}{
		{
			name:    "default only",
			content: "  Hello  ",
			want:    Slots{"default": "Hello"},
		},
		{
			name:    "named template removed from default",
			content: `<sergey-template name="x"> <i>X</i> </sergey-template>Body`,
			want:    Slots{"default": "Body", "x": "<i>X</i>"},
		},
		{
			name:    "default template replaces default content",
			content: `intro<sergey-template name="default">D</sergey-template>`,
			want:    Slots{"default": "D"},
		},
		{
			name:    "unnamed template is stored under the empty name",
			content: `<sergey-template>T</sergey-template>rest`,
			want:    Slots{"default": "rest", "": "T"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSlots(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractSlots = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompileDefaultSlot(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"card": `<div class="card"><sergey-slot></sergey-slot></div>`,
	}, nil)

	got := mustCompile(t, c, `<sergey-import src="card">  Hello  </sergey-import>`)
	if got != `<div class="card">Hello</div>` {
		t.Errorf("Compile = %q", got)
	}
}

func TestCompileNamedSlots(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"card": `<h1><sergey-slot name="x"></sergey-slot></h1><p><sergey-slot/></p><sergey-slot name="y"><b>F</b></sergey-slot>`,
	}, nil)

	got := mustCompile(t, c, `<sergey-import src="card"><sergey-template name="x"><i>X</i></sergey-template>Body</sergey-import>`)
	want := `<h1><i>X</i></h1><p>Body</p><b>F</b>`
	if got != want {
		t.Errorf("Compile = %q, want %q", got, want)
	}
}

func TestCompileMissingImport(t *testing.T) {
	c := newTestCompiler(t, nil, nil)

	got := mustCompile(t, c, `<p>before</p><sergey-import src="nope"></sergey-import><p>after</p>`)
	if got != `<p>before</p><p>after</p>` {
		t.Errorf("Compile = %q", got)
	}
}

func TestCompileNestedImports(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"a": `<section><sergey-import src="b"/></section>`,
		"b": `<article><sergey-import src="c"></sergey-import></article>`,
		"c": `<i>leaf</i>`,
	}, nil)

	got := mustCompile(t, c, `<sergey-import src="a"></sergey-import>`)
	if got != `<section><article><i>leaf</i></article></section>` {
		t.Errorf("Compile = %q", got)
	}

	c.MaxDepth = 3
	if _, err := c.Compile(`<sergey-import src="a"></sergey-import>`); err != nil {
		t.Errorf("three levels should fit MaxDepth 3: %v", err)
	}
	c.MaxDepth = 2
	if _, err := c.Compile(`<sergey-import src="a"></sergey-import>`); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("three levels with MaxDepth 2: err = %v, want ErrMaxDepth", err)
	}
}

func TestCompileCycle(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"loop": `<div><sergey-import src="loop"></sergey-import></div>`,
	}, nil)
	c.MaxDepth = 5

	if _, err := c.Compile(`<sergey-import src="loop"></sergey-import>`); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("cycle: err = %v, want ErrMaxDepth", err)
	}
}

func TestCompileSlotContentWithImports(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"layout": `<main><sergey-slot></sergey-slot></main>`,
		"badge":  `<span class="badge">new</span>`,
	}, nil)

	got := mustCompile(t, c, `<sergey-import src="layout"><sergey-import src="badge"></sergey-import></sergey-import>`)
	if got != `<main><span class="badge">new</span></main>` {
		t.Errorf("Compile = %q", got)
	}
}

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(src string) (string, error) {
	r.calls++
	return "<p>" + src + "</p>", nil
}

func TestCompileNestedImportContentExpandsOnce(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"box": `<div><sergey-slot></sergey-slot></div>`,
	}, map[string]string{
		"note": "x",
	})
	md := &countingRenderer{}
	c.Markdown = md

	page := `<sergey-import src="note" as="markdown"></sergey-import>`
	for i := 0; i < 4; i++ {
		page = `<sergey-import src="box">` + page + `</sergey-import>`
	}
	got := mustCompile(t, c, page)
	if got != `<div><div><div><div><p>x</p></div></div></div></div>` {
		t.Errorf("Compile = %q", got)
	}
	if md.calls != 1 {
		t.Errorf("innermost import expanded %d times, want 1", md.calls)
	}
}

func TestCompileMarkdown(t *testing.T) {
	c := newTestCompiler(t, nil, map[string]string{
		"intro": "# Hi\n\nText.",
	})

	got := mustCompile(t, c, `<article><sergey-import src="intro" as="markdown"></sergey-import></article>`)
	if got != "<article><h1 id=\"hi\">Hi</h1>\n<p>Text.</p></article>" {
		t.Errorf("Compile = %q", got)
	}
}

func TestCompileIdempotent(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"card": `<div class="card"><sergey-slot></sergey-slot></div>`,
	}, nil)

	once := mustCompile(t, c, `<p>It's "quoted"</p><sergey-import src="card">Hello</sergey-import>`)
	twice := mustCompile(t, c, once)
	if once != twice {
		t.Errorf("Compile is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

var scopeAttr = regexp.MustCompile(`data-sergey-scope-([0-9a-f]+)=""`)

func TestCompileScopeUniqueness(t *testing.T) {
	scoped := `<style sergey-scoped>.a { color: red; }</style><p class="a">x</p>`
	c := newTestCompiler(t, map[string]string{"x": scoped, "y": scoped}, nil)

	got := mustCompile(t, c, `<sergey-import src="x"></sergey-import><sergey-import src="y"></sergey-import>`)

	matches := scopeAttr.FindAllStringSubmatch(got, -1)
	if len(matches) != 2 {
		t.Fatalf("want 2 scoped wrappers, got %d: %q", len(matches), got)
	}
	if matches[0][1] == matches[1][1] {
		t.Errorf("markers should differ: %q", got)
	}
	for _, m := range matches {
		if !strings.Contains(got, "[data-sergey-scope-"+m[1]+"] .a") {
			t.Errorf("selector for marker %s missing: %q", m[1], got)
		}
	}
	if strings.Contains(got, "data-sergey-autotag") {
		t.Errorf("wrapper attributes should be cleared: %q", got)
	}
}

func TestCompileInheritedScope(t *testing.T) {
	c := newTestCompiler(t, map[string]string{
		"outer": `<style sergey-scoped>.a { color: red; }</style><div class="o"><sergey-import src="inner"></sergey-import></div>`,
		"inner": `<p class="a">in</p>`,
	}, nil)

	got := mustCompile(t, c, `<sergey-import src="outer"></sergey-import>`)
	matches := scopeAttr.FindAllStringSubmatch(got, -1)
	if len(matches) != 2 || matches[0][1] != matches[1][1] {
		t.Errorf("inner expansion should carry the outer marker: %q", got)
	}
}

func TestHoistStyles(t *testing.T) {
	got := HoistStyles(`<p>x</p><style>.a{}</style><div><style>.b{}</style></div>`)
	want := "<p>x</p><div></div><style lang=\"text/css\">.b{}\n.a{}</style>"
	if got != want {
		t.Errorf("HoistStyles = %q, want %q", got, want)
	}

	doc := HoistStyles(`<html><head><title>t</title></head><body><style>.a{}</style><p>x</p></body></html>`)
	wantDoc := `<html><head><title>t</title><style lang="text/css">.a{}</style></head><body><p>x</p></body></html>`
	if doc != wantDoc {
		t.Errorf("HoistStyles = %q, want %q", doc, wantDoc)
	}

	script := `<script>var s = "<style>.x{}</style>";</script>`
	withScript := HoistStyles(`<head><title>t</title></head><body>` + script + `<style>.real{}</style></body>`)
	if !strings.Contains(withScript, `<style lang="text/css">.real{}</style></head>`) {
		t.Errorf("HoistStyles should hoist only the real block: %q", withScript)
	}
	if !strings.Contains(withScript, script) {
		t.Errorf("HoistStyles changed script text: %q", withScript)
	}

	if got := HoistStyles(`<p>no styles</p>`); got != `<p>no styles</p>` {
		t.Errorf("HoistStyles without styles = %q", got)
	}
}
