package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements never have an end tag or children.
// https://html.spec.whatwg.org/multipage/syntax.html#void-elements
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid reports whether tag is an HTML void element.
func IsVoid(tag string) bool { return voidElements[strings.ToLower(tag)] }

// rawTextElements hold text that is written without escaping.
var rawTextElements = map[string]bool{
	"style":     true,
	"script":    true,
	"xmp":       true,
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"plaintext": true,
	"noscript":  true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;")
)

// EscapeAttr escapes a value for use inside a double-quoted attribute.
func EscapeAttr(s string) string { return attrEscaper.Replace(s) }

// The serializer follows the browser innerHTML/outerHTML algorithm rather than
// html.Render: html.Render also escapes quotes and apostrophes in text, which
// would make every serialized form drift from the author's markup.

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		writeChildren(b, n)
	case html.ElementNode:
		writeElement(b, n)
	case html.TextNode:
		if p := n.Parent; p != nil && p.Type == html.ElementNode && rawTextElements[p.Data] {
			b.WriteString(n.Data)
			return
		}
		b.WriteString(textEscaper.Replace(n.Data))
	case html.CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case html.DoctypeNode:
		b.WriteString("<!DOCTYPE ")
		b.WriteString(n.Data)
		b.WriteString(">")
	case html.RawNode:
		b.WriteString(n.Data)
	}
}

func writeChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
}

func writeElement(b *strings.Builder, n *html.Node) {
	writeStartTag(b, n)
	if voidElements[n.Data] {
		return
	}
	// The parser drops one newline right after these start tags, so one has
	// to be written back for a leading newline to survive a round trip.
	switch n.Data {
	case "pre", "listing", "textarea":
		if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
			b.WriteByte('\n')
		}
	}
	writeChildren(b, n)
	b.WriteString("</")
	b.WriteString(n.Data)
	b.WriteString(">")
}

func writeStartTag(b *strings.Builder, n *html.Node) {
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		b.WriteString(attrName(a))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}
