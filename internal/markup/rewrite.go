package markup

import (
	"errors"
	"regexp"
	"strings"
)

// Transform produces the replacement text for one matched element. It may
// mutate el first; the mutation shows in el.OuterHTML and el.InnerHTML.
type Transform func(el *Element) (string, error)

type region int

const (
	outerRegion region = iota
	innerRegion
)

var (
	errUnparsable = errors.New("markup: unparsable input")
	simpleTagName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// Rewrite applies fn to every element matching selector and splices each
// result over the element's serialized form in body.
//
// The document is parsed only to find elements. Replacement is a literal
// first-occurrence substitution against the working text, so markup that no
// transform touches keeps its exact formatting. Elements are visited in
// document order and each capture is taken before fn runs, which lets two
// identical elements be replaced one after the other and lets an ancestor be
// replaced before its descendants.
//
// If body cannot be parsed or selector is invalid, body is returned
// unchanged. An error from fn aborts the rewrite and is returned.
func Rewrite(body, selector string, fn Transform) (string, error) {
	return rewrite(body, selector, outerRegion, fn)
}

// RewriteInner is Rewrite with each element's inner markup as the replaced
// region; the element's own tags stay in place.
func RewriteInner(body, selector string, fn Transform) (string, error) {
	return rewrite(body, selector, innerRegion, fn)
}

func rewrite(body, selector string, r region, fn Transform) (string, error) {
	out := body

	apply := func(source string) error {
		doc, err := Parse(source)
		if err != nil {
			return errUnparsable
		}
		elems, err := doc.QueryAll(selector)
		if err != nil {
			return errUnparsable
		}
		for _, el := range elems {
			var find string
			if r == innerRegion {
				find = el.InnerHTML()
			} else {
				find = el.OuterHTML()
			}
			replacement, err := fn(el)
			if err != nil {
				return err
			}
			if find == "" {
				continue
			}
			out = strings.Replace(out, find, replacement, 1)
		}
		return nil
	}

	if err := apply(body); err != nil {
		if errors.Is(err, errUnparsable) {
			return body, nil
		}
		return "", err
	}

	// Tags written inside an attribute value, such as
	// <meta content="<sergey-slot></sergey-slot>">, or inside <title> are
	// plain text to the parser. Pick up the ones without nested markup by
	// pattern. Elements the pass above matched are never visited again.
	if simpleTagName.MatchString(selector) && strings.Contains(out, "</"+selector+">") {
		leftovers, err := embeddedTags(out, selector)
		if err != nil {
			return out, nil
		}
		if len(leftovers) > 0 {
			if err := apply(strings.Join(leftovers, "")); err != nil && !errors.Is(err, errUnparsable) {
				return "", err
			}
		}
	}

	return out, nil
}

func embeddedTags(body, tag string) ([]string, error) {
	doc, err := Parse(body)
	if err != nil {
		return nil, err
	}
	pattern := leftoverPattern(tag)
	var tags []string
	for _, text := range doc.EmbeddedText("<" + tag) {
		tags = append(tags, pattern.FindAllString(text, -1)...)
	}
	return tags, nil
}

func leftoverPattern(tag string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`<` + quoted + `(?:\s[^<]*)?>[^<]*</` + quoted + `>`)
}
