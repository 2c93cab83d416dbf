package compiler

import (
	"strings"

	"github.com/sergeyhtml/sergey/internal/markup"
	"github.com/sergeyhtml/sergey/internal/scope"
)

// Finalize prepares compiled page markup for writing: leftover wrapper
// attributes are cleared and every style block is hoisted.
func Finalize(page string) string {
	return HoistStyles(scope.ClearWrappers(page))
}

// HoistStyles moves the content of every <style> element into a single
// stylesheet, last block first. The stylesheet is appended to <head> when the
// page has one and to the end of the markup otherwise.
func HoistStyles(page string) string {
	var sheets []string
	body, _ := markup.Rewrite(page, "style", func(el *markup.Element) (string, error) {
		sheets = append(sheets, el.InnerHTML())
		return "", nil
	})
	if len(sheets) == 0 {
		return body
	}

	for i, j := 0, len(sheets)-1; i < j; i, j = i+1, j-1 {
		sheets[i], sheets[j] = sheets[j], sheets[i]
	}
	style := markup.NewElement("style")
	style.SetAttr("lang", "text/css")
	style.SetText(strings.Join(sheets, "\n"))

	if strings.Contains(body, "</head>") {
		if doc, err := markup.Parse(body); err == nil && doc.Head() != nil {
			doc.Head().AppendChild(style)
			return doc.Serialize()
		}
	}
	return body + style.OuterHTML()
}
