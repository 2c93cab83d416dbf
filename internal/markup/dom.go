package markup

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed markup tree. Fragments are parsed the way a browser
// would parse them as a full document, so head-only content such as <style>
// or <meta> ends up in the head and everything else in the body.
type Document struct {
	root *html.Node
}

// Parse builds a Document from raw markup.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("markup: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	sel, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	nodes := sel.MatchAll(d.root)
	elems := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &Element{n: n})
	}
	return elems, nil
}

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) (*Element, error) {
	sel, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	n := sel.MatchFirst(d.root)
	if n == nil {
		return nil, nil
	}
	return &Element{n: n}, nil
}

// Head returns the document's <head> element.
func (d *Document) Head() *Element { return d.find(atom.Head) }

// Body returns the document's <body> element.
func (d *Document) Body() *Element { return d.find(atom.Body) }

func (d *Document) find(a atom.Atom) *Element {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.DataAtom == a {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	if n := walk(d.root); n != nil {
		return &Element{n: n}
	}
	return nil
}

// EmbeddedText returns every attribute value, and the text of every <title>
// and <textarea>, that contains substr. The parser keeps tags written there
// as plain text. Script and style content is never returned.
func (d *Document) EmbeddedText(substr string) []string {
	var found []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if strings.Contains(a.Val, substr) {
					found = append(found, a.Val)
				}
			}
		}
		if n.Type == html.TextNode && n.Parent != nil &&
			(n.Parent.DataAtom == atom.Title || n.Parent.DataAtom == atom.Textarea) &&
			strings.Contains(n.Data, substr) {
			found = append(found, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}

// Serialize renders the whole document, doctype included.
func (d *Document) Serialize() string {
	var b strings.Builder
	writeChildren(&b, d.root)
	return b.String()
}

// Element is a handle on one element node of a Document. Mutations are
// visible through every later OuterHTML/InnerHTML call on the same tree.
type Element struct {
	n *html.Node
}

// NewElement creates a detached element, used to build markup that is
// serialized and spliced into a document as text.
func NewElement(tag string) *Element {
	return &Element{n: &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}}
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string { return e.n.Data }

// SetTagName renames the element, keeping its attributes and children.
func (e *Element) SetTagName(tag string) {
	e.n.Data = tag
	e.n.DataAtom = atom.Lookup([]byte(tag))
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if attrName(a) == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when the attribute is absent or empty.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok && v != "" {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute in place, or appends it when absent.
func (e *Element) SetAttr(name, val string) {
	for i, a := range e.n.Attr {
		if attrName(a) == name {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: val})
}

// PrependAttr sets an attribute, moving it to the front of the attribute list.
func (e *Element) PrependAttr(name, val string) {
	e.RemoveAttr(name)
	e.n.Attr = append([]html.Attribute{{Key: name, Val: val}}, e.n.Attr...)
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.n.Attr {
		if attrName(a) == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

// AttrCount returns the number of attributes.
func (e *Element) AttrCount() int { return len(e.n.Attr) }

// ChildCount returns the number of child nodes, text and comments included.
func (e *Element) ChildCount() int {
	count := 0
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// RemoveChildren detaches every child node.
func (e *Element) RemoveChildren() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.RemoveChildren()
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// AppendChild moves other (detached) under e.
func (e *Element) AppendChild(other *Element) {
	if other.n.Parent != nil {
		other.n.Parent.RemoveChild(other.n)
	}
	e.n.AppendChild(other.n)
}

// HasAncestor reports whether some element above e is named tag.
func (e *Element) HasAncestor(tag string) bool {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

// OuterHTML serializes the element including its own tags.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	writeNode(&b, e.n)
	return b.String()
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	writeChildren(&b, e.n)
	return b.String()
}

// StartTag serializes only the opening tag.
func (e *Element) StartTag() string {
	var b strings.Builder
	writeStartTag(&b, e.n)
	return b.String()
}

var selectorCache sync.Map

// compileSelector caches compiled selectors; pages are compiled concurrently
// and every rewrite pass reuses the same handful of selectors.
func compileSelector(selector string) (cascadia.Selector, error) {
	if cached, ok := selectorCache.Load(selector); ok {
		return cached.(cascadia.Selector), nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("markup: selector %q: %w", selector, err)
	}
	selectorCache.Store(selector, sel)
	return sel, nil
}
