package links

import (
	"strings"

	"github.com/sergeyhtml/sergey/internal/markup"
)

const linkTag = "sergey-link"

// Activator turns <sergey-link> tags into anchors, marking the ones that
// point at the page being written or at one of its parents.
type Activator struct {
	ActiveClass string
}

// NewActivator returns an Activator using activeClass for current and
// parent links.
func NewActivator(activeClass string) *Activator {
	return &Activator{ActiveClass: activeClass}
}

// Activate rewrites every link tag in body for a page written to
// outputPath, a slash-separated path such as "/blog/post-1.html".
func (a *Activator) Activate(body, outputPath string) string {
	if !strings.Contains(body, "<"+linkTag) {
		return body
	}

	out, _ := markup.Rewrite(body, linkTag, func(el *markup.Element) (string, error) {
		to := ""
		for _, name := range []string{"to", "href"} {
			if v, ok := el.Attr(name); ok {
				to = v
				el.RemoveAttr(name)
				break
			}
		}

		current := IsCurrentPage(to, outputPath)
		if current || IsParentPage(to, outputPath) {
			class, _ := el.Attr("class")
			el.SetAttr("class", strings.TrimSpace(a.ActiveClass+" "+strings.TrimLeft(class, " \t\r\n\f")))
			if current {
				el.SetAttr("aria-current", "page")
			}
		}

		el.SetTagName("a")
		el.PrependAttr("href", to)
		return el.OuterHTML(), nil
	})
	return out
}

// CleanPath drops an "index.html" segment and any fragment identifier.
func CleanPath(p string) string {
	p = strings.Replace(p, "index.html", "", 1)
	if i := strings.Index(p, "#"); i >= 0 {
		p = p[:i]
	}
	return p
}

// IsCurrentPage reports whether link target ref points at outputPath.
func IsCurrentPage(ref, outputPath string) bool {
	return outputPath != "" && CleanPath(outputPath) == CleanPath(ref)
}

// IsParentPage reports whether outputPath lies under link target ref.
func IsParentPage(ref, outputPath string) bool {
	return outputPath != "" && strings.HasPrefix(CleanPath(outputPath), CleanPath(ref))
}
