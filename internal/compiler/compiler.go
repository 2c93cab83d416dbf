package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergeyhtml/sergey/internal/fragment"
	"github.com/sergeyhtml/sergey/internal/markup"
	"github.com/sergeyhtml/sergey/internal/scope"
)

// ErrMaxDepth is returned when imports nest deeper than Compiler.MaxDepth,
// which in practice means an import cycle.
var ErrMaxDepth = errors.New("import nesting too deep")

// DefaultMaxDepth is the nesting limit used by New.
const DefaultMaxDepth = 64

const (
	importTag    = "sergey-import"
	markdownMode = "markdown"
)

// MarkdownRenderer converts markdown content imports to HTML.
type MarkdownRenderer interface {
	Render(src string) (string, error)
}

// Compiler expands sergey tags in page markup against a fragment store.
// A Compiler holds no per-page state, so one instance may compile many
// pages concurrently once the store is fully loaded.
type Compiler struct {
	Store    *fragment.Store
	Markdown MarkdownRenderer
	Scoper   *scope.Engine
	// MaxDepth bounds import nesting. Zero disables the check.
	MaxDepth int
}

// New creates a Compiler reading fragments from store.
func New(store *fragment.Store, md MarkdownRenderer) *Compiler {
	return &Compiler{
		Store:    store,
		Markdown: md,
		Scoper:   scope.NewEngine(),
		MaxDepth: DefaultMaxDepth,
	}
}

// Compile expands every import, slot and template in page until no import
// tag is left. Imports that cannot be found render as nothing.
func (c *Compiler) Compile(page string) (string, error) {
	return c.compile(page, Slots{DefaultSlot: ""}, scope.Context{}, 0)
}

func (c *Compiler) compile(body string, slots Slots, sc scope.Context, depth int) (string, error) {
	body = markup.Prepare(body)

	body, err := fillSlots(body, slots)
	if err != nil {
		return "", err
	}
	if !strings.Contains(body, "<"+importTag) {
		return body, nil
	}
	if c.MaxDepth > 0 && depth >= c.MaxDepth {
		return "", fmt.Errorf("%w: more than %d levels", ErrMaxDepth, c.MaxDepth)
	}

	body, err = markup.Rewrite(body, importTag, func(el *markup.Element) (string, error) {
		return c.expandImport(el, sc, depth)
	})
	if err != nil {
		return "", err
	}
	return scope.ClearWrappers(body), nil
}

// expandImport resolves one import tag to its fully expanded markup. Imports
// written inside another import's content belong to that import's slots and
// are expanded when it is, so they are left alone here.
func (c *Compiler) expandImport(el *markup.Element, sc scope.Context, depth int) (string, error) {
	if el.HasAncestor(importTag) {
		return el.OuterHTML(), nil
	}
	src, _ := el.Attr("src")

	resolved, err := c.resolve(src, el.AttrOr("as", "") == markdownMode)
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return "", nil
	}

	slots := ExtractSlots(el.InnerHTML())
	resolved, inner := c.Scoper.Apply(resolved, sc)
	return c.compile(resolved, slots, inner, depth+1)
}

func (c *Compiler) resolve(src string, asMarkdown bool) (string, error) {
	if !asMarkdown {
		raw, _ := c.Store.Get(c.Store.ImportKey(src))
		return raw, nil
	}

	raw, ok := c.Store.Get(c.Store.ContentKey(src))
	if !ok || c.Markdown == nil {
		return "", nil
	}
	rendered, err := c.Markdown.Render(raw)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", src, err)
	}
	return markup.Prepare(strings.TrimSpace(rendered)), nil
}
