package markup

import (
	"regexp"
	"strings"
)

var (
	selfClosingTag = regexp.MustCompile(`<[^<|/>]+/>`)
	lineBreaks     = regexp.MustCompile(`[\r\n]`)
	bodySpacing    = regexp.MustCompile(`(\s*)<body>`)
	documentClose  = regexp.MustCompile(`\s*</body></html>`)
)

// ExpandSelfClosing rewrites `<tag .../>` into `<tag ...></tag>` for non-void
// tags and into `<tag ...>` for void ones. Custom elements written
// self-closed would otherwise swallow their following siblings as children.
func ExpandSelfClosing(markup string) string {
	for _, original := range selfClosingTag.FindAllString(markup, -1) {
		def := strings.TrimSpace(original[1 : len(original)-2])
		fields := strings.Fields(def)
		if len(fields) == 0 {
			continue
		}
		tag := fields[0]

		var expanded string
		if IsVoid(tag) {
			expanded = "<" + lineBreaks.ReplaceAllString(def, "") + ">"
		} else {
			expanded = "<" + def + "></" + tag + ">"
		}
		markup = strings.Replace(markup, original, expanded, 1)
	}
	return markup
}

// Prepare normalizes markup so that the serialized form of any element found
// by a later query occurs verbatim in the returned text. Full documents keep
// their doctype and the whitespace around <body>; fragments come back as the
// head and body content that the parser produced, without the implied
// <html>, <head> and <body> wrappers.
//
// Unparsable input is returned unchanged.
func Prepare(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return markup
	}
	expanded := ExpandSelfClosing(markup)

	doc, err := Parse(expanded)
	if err != nil {
		return markup
	}
	head, body := doc.Head(), doc.Body()
	if head == nil || body == nil {
		return expanded
	}

	if strings.Contains(expanded, "</html>") || strings.Contains(expanded, "<!DOCTYPE html>") {
		spacing := ""
		if m := bodySpacing.FindStringSubmatch(expanded); m != nil {
			spacing = m[1]
		}
		out := strings.Replace(doc.Serialize(), "<head></head>", spacing, 1)
		if loc := documentClose.FindStringIndex(out); loc != nil {
			out = out[:loc[0]] + spacing + "</body>\n</html>" + out[loc[1]:]
		}
		return out
	}

	hasHeadTag := strings.Contains(expanded, "</head>")
	if head.ChildCount() > 0 {
		if body.ChildCount() > 0 {
			if !hasHeadTag || !strings.Contains(expanded, "</body>") {
				return head.InnerHTML() + body.InnerHTML()
			}
			return doc.Serialize()
		}
		if hasHeadTag {
			return head.OuterHTML()
		}
		return head.InnerHTML()
	}

	if strings.Contains(expanded, "</body>") || strings.Contains(expanded, "<body ") {
		return body.OuterHTML()
	}
	return body.InnerHTML()
}
