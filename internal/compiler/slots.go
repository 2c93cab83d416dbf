package compiler

import (
	"strings"

	"github.com/sergeyhtml/sergey/internal/markup"
)

// DefaultSlot receives import content that is not inside a named template.
const DefaultSlot = "default"

const (
	slotTag     = "sergey-slot"
	templateTag = "sergey-template"
)

// Slots maps slot names to the trimmed markup supplied at an import site.
type Slots map[string]string

// ExtractSlots splits the content written inside an import tag into slots.
//
// Every <sergey-template name="..."> becomes a named slot and is cut out of
// the default slot. A template named "default" replaces the default slot
// instead of being cut out. A template without a name is stored under the
// empty name, which no <sergey-slot> can ask for.
func ExtractSlots(content string) Slots {
	slots := Slots{DefaultSlot: strings.TrimSpace(content)}

	doc, err := markup.Parse(content)
	if err != nil {
		return slots
	}
	templates, err := doc.QueryAll(templateTag)
	if err != nil {
		return slots
	}
	for _, tmpl := range templates {
		name, _ := tmpl.Attr("name")
		if name != DefaultSlot {
			slots[DefaultSlot] = strings.Replace(slots[DefaultSlot], tmpl.OuterHTML(), "", 1)
		}
		slots[name] = strings.TrimSpace(tmpl.InnerHTML())
	}
	slots[DefaultSlot] = strings.TrimSpace(slots[DefaultSlot])
	return slots
}

// fillSlots replaces each <sergey-slot> in body with the matching slot, or
// with its own content when the slot is missing or empty.
func fillSlots(body string, slots Slots) (string, error) {
	if !strings.Contains(body, "<"+slotTag) {
		return body, nil
	}
	return markup.Rewrite(body, slotTag, func(el *markup.Element) (string, error) {
		if v := slots[el.AttrOr("name", DefaultSlot)]; v != "" {
			return v, nil
		}
		return el.InnerHTML(), nil
	})
}
