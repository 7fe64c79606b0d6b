package markup

import (
	"fmt"
	"sort"
	"strings"
)

// Attrs holds element attributes. Values are stringified; bool true
// renders as a bare attribute, bool false drops the attribute.
type Attrs map[string]any

// El creates an element node: an opening tag with escaped attributes, the
// children in order, and a closing tag. Void elements (br, img, ...) take
// no children and no closing tag.
func El(tag string, attrs Attrs, children ...*Node) *Node {
	var open strings.Builder
	open.WriteByte('<')
	open.WriteString(tag)
	writeAttrs(&open, attrs)
	open.WriteByte('>')

	if isVoidElement(tag) {
		return Raw(open.String())
	}

	nodes := make([]*Node, 0, len(children)+2)
	nodes = append(nodes, Raw(open.String()))
	nodes = append(nodes, children...)
	nodes = append(nodes, Raw("</"+tag+">"))
	return Group(nodes...)
}

// writeAttrs renders attributes sorted by key for deterministic output.
func writeAttrs(b *strings.Builder, attrs Attrs) {
	if len(attrs) == 0 {
		return
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := attrs[key].(type) {
		case bool:
			if v {
				b.WriteByte(' ')
				b.WriteString(key)
			}
		case nil:
			// Skip nil values
		default:
			fmt.Fprintf(b, ` %s="%s"`, key, EscapeAttr(attrToString(v)))
		}
	}
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// voidElements are HTML elements that never have closing tags.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}

// isVoidElement returns true if the tag is a void element.
func isVoidElement(tag string) bool {
	return voidElements[tag]
}
