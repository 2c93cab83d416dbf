// Package scope confines <style sergey-scoped> blocks to the import that
// declares them.
//
// A loose block (`sergey-scoped`) has each selector prefixed with an
// attribute carried by the import's wrapper element, so it applies to the
// import and everything expanded inside it. A strict block
// (`sergey-scoped="strict"`) has an attribute spliced into each selector and
// stamped on every element of the import itself, so nested imports are not
// affected. Selectors containing `sergey-ignore` are left unscoped.
package scope

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/google/uuid"

	"github.com/sergeyhtml/sergey/internal/markup"
)

const (
	// AutotagAttr marks the synthetic wrapper around an expanded import.
	AutotagAttr = "data-sergey-autotag"

	scopedAttr   = "sergey-scoped"
	strictValue  = "strict"
	ignoreFlag   = "sergey-ignore"
	loosePrefix  = "data-sergey-scope-"
	strictPrefix = "data-sergey-strict-"

	scopedStyles   = "style[" + scopedAttr + "]"
	rootWrapper    = "body > [" + AutotagAttr + "]"
	anyWrapper     = "[" + AutotagAttr + "]"
	stampedStrict  = "body *:not(style)"
	wrapperOpen    = `<div ` + AutotagAttr + `="">`
	wrapperClose   = `</div>`
	markerIDLength = 12
)

// Marker is the generated token tying one scoped style block to the
// elements it may match.
type Marker string

// LooseAttr is the ancestor attribute matched by loose selectors.
func (m Marker) LooseAttr() string { return loosePrefix + string(m) }

// StrictAttr is the per-element attribute matched by strict selectors.
func (m Marker) StrictAttr() string { return strictPrefix + string(m) }

// Context holds the loose markers of every enclosing import. It is an
// immutable value passed down the recursive expansion.
type Context struct {
	loose []Marker
}

// NewContext returns a context carrying the given loose markers.
func NewContext(markers ...Marker) Context {
	return Context{}.with(markers)
}

// Markers returns a copy of the carried markers, outermost first.
func (c Context) Markers() []Marker {
	return append([]Marker(nil), c.loose...)
}

func (c Context) with(markers []Marker) Context {
	if len(markers) == 0 {
		return c
	}
	merged := make([]Marker, 0, len(c.loose)+len(markers))
	merged = append(merged, c.loose...)
	merged = append(merged, markers...)
	return Context{loose: merged}
}

// Engine scopes style blocks. The zero value is not usable; use NewEngine.
type Engine struct {
	newMarker func() Marker
}

// NewEngine returns an Engine generating random markers.
func NewEngine() *Engine {
	return NewEngineWithMarkers(randomMarker)
}

// NewEngineWithMarkers returns an Engine drawing markers from gen, which
// must never repeat a value.
func NewEngineWithMarkers(gen func() Marker) *Engine {
	return &Engine{newMarker: gen}
}

func randomMarker() Marker {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Marker(id[:markerIDLength])
}

// Apply scopes every marked style block in body, makes sure body has exactly
// one wrapper at its root and stamps the markers where the rewritten
// selectors expect them. Loose markers from inherited are stamped on the
// wrapper too. The returned context adds this body's loose markers to
// inherited, for the expansions nested inside it.
func (e *Engine) Apply(body string, inherited Context) (string, Context) {
	body = markup.Prepare(body)

	var loose, strict []Marker
	body, _ = markup.RewriteInner(body, scopedStyles, func(el *markup.Element) (string, error) {
		isStrict := el.AttrOr(scopedAttr, "") == strictValue
		m := e.newMarker()
		if isStrict {
			strict = append(strict, m)
		} else {
			loose = append(loose, m)
		}
		return ScopeStylesheet(el.InnerHTML(), m, isStrict), nil
	})

	body, _ = markup.Rewrite(body, scopedStyles, func(el *markup.Element) (string, error) {
		el.RemoveAttr(scopedAttr)
		return el.OuterHTML(), nil
	})

	if !hasRootWrapper(body) {
		body = wrapperOpen + body + wrapperClose
	}

	scoped := inherited.with(loose)
	return stamp(body, scoped.loose, strict), scoped
}

func hasRootWrapper(body string) bool {
	doc, err := markup.Parse(body)
	if err != nil {
		return false
	}
	el, err := doc.Query(rootWrapper)
	return err == nil && el != nil
}

func stamp(body string, loose, strict []Marker) string {
	if len(loose) == 0 && len(strict) == 0 {
		return body
	}

	if len(loose) > 0 {
		doc, err := markup.Parse(body)
		if err != nil {
			return body
		}
		wrapper, err := doc.Query(anyWrapper)
		if err != nil || wrapper == nil {
			return body
		}
		before := wrapper.StartTag()
		for _, m := range loose {
			wrapper.SetAttr(m.LooseAttr(), "")
		}
		body = strings.Replace(body, before, wrapper.StartTag(), 1)
	}

	if len(strict) > 0 {
		body, _ = markup.Rewrite(body, stampedStrict, func(el *markup.Element) (string, error) {
			for _, m := range strict {
				el.SetAttr(m.StrictAttr(), "")
			}
			return el.OuterHTML(), nil
		})
	}
	return body
}

// ClearWrappers removes the wrapper attribute everywhere in body. A wrapper
// left without attributes is replaced by its children; one still carrying
// loose markers stays, since scoped selectors match through it.
func ClearWrappers(body string) string {
	body = markup.Prepare(body)
	out, _ := markup.Rewrite(body, anyWrapper, func(el *markup.Element) (string, error) {
		el.RemoveAttr(AutotagAttr)
		if el.AttrCount() == 0 {
			return el.InnerHTML(), nil
		}
		return el.OuterHTML(), nil
	})
	return out
}

// ScopeSelector rewrites one selector for marker m.
func ScopeSelector(selector string, m Marker, strict bool) string {
	if !strict {
		return "[" + m.LooseAttr() + "] " + selector
	}
	attr := "[" + m.StrictAttr() + "]"
	if i := pseudoIndex(selector); i >= 0 {
		return selector[:i] + attr + selector[i:]
	}
	return selector + attr
}

// pseudoIndex returns the position of the first colon that starts a pseudo
// class or element, skipping colons inside attribute selectors and strings.
func pseudoIndex(selector string) int {
	var quote byte
	brackets := 0
	for i := 0; i < len(selector); i++ {
		ch := selector[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '[':
			brackets++
		case ch == ']' && brackets > 0:
			brackets--
		case ch == ':' && brackets == 0:
			return i
		}
	}
	return -1
}

// groupingRules hold ordinary style rules whose selectors get scoped too.
var groupingRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@container": true,
	"@layer":     true,
}

// ScopeStylesheet rewrites every style rule selector in sheet. Text that does
// not parse as CSS is returned unchanged.
func ScopeStylesheet(sheet string, m Marker, strict bool) string {
	parsed, err := parser.Parse(sheet)
	if err != nil {
		return sheet
	}
	scopeRules(parsed.Rules, m, strict)
	return parsed.String()
}

func scopeRules(rules []*css.Rule, m Marker, strict bool) {
	for _, rule := range rules {
		if rule.Kind != css.QualifiedRule {
			if groupingRules[strings.ToLower(rule.Name)] {
				scopeRules(rule.Rules, m, strict)
			}
			continue
		}
		for i, sel := range rule.Selectors {
			if strings.Contains(sel, ignoreFlag) {
				rule.Selectors[i] = strings.TrimSpace(strings.Replace(sel, ignoreFlag, "", 1))
				continue
			}
			rule.Selectors[i] = ScopeSelector(sel, m, strict)
		}
	}
}
